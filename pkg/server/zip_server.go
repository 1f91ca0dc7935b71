package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/matst80/zipfinder/pkg/common"
	"github.com/matst80/zipfinder/pkg/common/jsoncompat"
	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/matst80/zipfinder/pkg/tracking"
)

// CityLookup is the read interface the API depends on.
type CityLookup interface {
	Lookup(ctx context.Context, cityName string) ([]postal.Record, error)
}

type ZipServer struct {
	Lookup   CityLookup
	Tracking tracking.Tracking
	// CacheTime is the max-age, in seconds, sent with successful lookups.
	CacheTime string
}

// Handler returns the public API, wrapped with CORS handling and the access log.
func (ws *ZipServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lookup/city/{cityName}", ws.LookupCity)
	mux.HandleFunc("GET /zips/city/{cityName}", ws.LookupCity)
	mux.HandleFunc("GET /hello/{name}", ws.Hello)
	return WithRequestLog(common.WithCors(mux))
}

func (ws *ZipServer) LookupCity(w http.ResponseWriter, r *http.Request) {
	cityName := r.PathValue("cityName")
	opts, err := DecodeLookupOptions(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := ws.Lookup.Lookup(r.Context(), cityName)
	if ws.Tracking != nil && (err == nil || errors.Is(err, index.ErrNotFound)) {
		ws.Tracking.TrackLookup(tracking.NewLookupEvent(r, RequestId(r), cityName, len(records)))
	}
	if errors.Is(err, index.ErrNotFound) {
		http.Error(w, "invalid city name", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("lookup of %q failed: %v", cityName, err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	noResults.Add(float64(len(records)))

	cacheTime := ws.CacheTime
	if cacheTime == "" {
		cacheTime = "3600"
	}
	if opts.Format == FormatJsonl {
		publicHeaders(w, false, cacheTime)
		w.WriteHeader(http.StatusOK)
		writeJsonl(w, records)
		return
	}

	data, err := jsoncompat.Marshal(records)
	if err != nil {
		log.Printf("could not encode %d records for %q: %v", len(records), cityName, err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	publicHeaders(w, true, cacheTime)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("could not write response: %v", err)
	}
}

func writeJsonl(w http.ResponseWriter, records []postal.Record) {
	for _, rec := range records {
		line, err := jsoncompat.Marshal(rec)
		if err != nil {
			log.Printf("could not encode record %s: %v", rec.ZipCode, err)
			return
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			log.Printf("could not stream record: %v", err)
			return
		}
	}
}

func (ws *ZipServer) Hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello " + r.PathValue("name") + "!"))
}
