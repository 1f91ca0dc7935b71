package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/matst80/zipfinder/pkg/common"
	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/matst80/zipfinder/pkg/server"
	"github.com/matst80/zipfinder/pkg/storage"
	"github.com/matst80/zipfinder/pkg/tracking"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")

func debugHandler(profiling bool) http.Handler {
	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if profiling {
		log.Println("profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return debugMux
}

func main() {
	flag.Parse()
	cfg := loadConfig()
	ctx := context.Background()

	start := time.Now()
	ds := storage.NewDiskStorage(cfg.Country, cfg.DataDir)
	records, err := postal.LoadFile(ds, cfg.Dataset, cfg.CSV)
	if err != nil {
		log.Fatalf("could not load zips: %v", err)
	}
	idx := index.Build(records)
	index.ObserveIndex(idx)
	log.Printf("loaded %d zips in %d cities in %s", idx.Len(), idx.Cities(), time.Since(start).Truncate(time.Millisecond))

	store, closeStore, err := openStore(ctx, cfg, idx)
	if err != nil {
		log.Fatalf("could not open %s store: %v", cfg.Store, err)
	}
	hooks := []common.ShutdownHook{closeStore}

	srv := &server.ZipServer{
		Lookup:    index.NewService(store),
		CacheTime: cfg.CacheTime,
	}
	if cfg.RabbitUrl != "" {
		trk, err := tracking.NewRabbitTracking(cfg.RabbitUrl, cfg.Country)
		if err != nil {
			log.Printf("lookup tracking disabled, could not connect to rabbit: %v", err)
		} else {
			srv.Tracking = trk
			hooks = append(hooks, trk.Close)
		}
	}

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       15 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	servers := []common.Server{
		{Name: "zip api", Server: common.NewServerWithTimeouts(&http.Server{Addr: cfg.listenAddress(), Handler: srv.Handler()}, timeouts)},
		// no write timeout, /debug/pprof/profile and trace stream for as long as requested
		{Name: "debug server", Server: &http.Server{Addr: cfg.DebugAddress, Handler: debugHandler(*enableProfiling), ReadHeaderTimeout: timeouts.ReadHeader}},
	}
	if err := common.RunServersWithShutdown(ctx, servers, timeouts.Shutdown, timeouts.Hook, hooks...); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
