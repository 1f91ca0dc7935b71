package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/matst80/zipfinder/pkg/cache"
	"github.com/matst80/zipfinder/pkg/common"
	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/storage"
)

// openStore returns the store lookups are served from. Remote stores get a
// fresh copy of idx before the api starts.
func openStore(ctx context.Context, cfg config, idx *index.CityIndex) (index.Store, common.ShutdownHook, error) {
	switch cfg.Store {
	case storeMemory:
		return idx, nil, nil
	case storeRedis:
		if cfg.RedisUrl == "" {
			return nil, nil, errors.New("REDIS_URL is required for the redis store")
		}
		rs := cache.NewRedisStore(cfg.RedisUrl, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rs.Ping(pingCtx)
		cancel()
		if err != nil {
			rs.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisUrl, err)
		}
		if err := publish(ctx, rs, idx); err != nil {
			rs.Close()
			return nil, nil, err
		}
		return rs, func(context.Context) error { return rs.Close() }, nil
	case storePostgres:
		if cfg.PostgresUrl == "" {
			return nil, nil, errors.New("PG_URL is required for the postgres store")
		}
		pg, err := storage.NewPostgresStore(ctx, cfg.PostgresUrl)
		if err != nil {
			return nil, nil, err
		}
		if err := publish(ctx, pg, idx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, func(context.Context) error {
			pg.Close()
			return nil
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func publish(ctx context.Context, p index.Publisher, idx *index.CityIndex) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	start := time.Now()
	if err := p.Publish(ctx, idx); err != nil {
		return fmt.Errorf("publish index: %w", err)
	}
	log.Printf("published %d cities in %s", idx.Cities(), time.Since(start).Truncate(time.Millisecond))
	return nil
}
