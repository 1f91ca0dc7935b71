package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matst80/zipfinder/pkg/common/jsoncompat"
	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/postal"
	"github.com/redis/go-redis/v9"
)

type LocalEntry struct {
	Expires time.Time
	Records []postal.Record
}

// RedisStore serves city buckets from redis lists, one list per normalized
// city, with a short lived in-process copy of recently read buckets.
type RedisStore struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	LocalTTL time.Duration
	client   *redis.Client
	mu       sync.RWMutex
	memCache map[string]LocalEntry
}

func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{
		Addr:     addr,
		Password: password,
		DB:       db,
		Prefix:   prefix,
		LocalTTL: time.Minute,
		client:   rdb,
		memCache: make(map[string]LocalEntry),
	}
}

func (c *RedisStore) cityKey(key string) string {
	return c.Prefix + ":city:" + key
}

func (c *RedisStore) keysKey() string {
	return c.Prefix + ":cities"
}

func (c *RedisStore) getLocal(key string) ([]postal.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	local, found := c.memCache[key]
	if !found || time.Now().After(local.Expires) {
		return nil, false
	}
	return local.Records, true
}

func (c *RedisStore) setLocal(key string, records []postal.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memCache[key] = LocalEntry{Expires: time.Now().Add(c.LocalTTL), Records: records}
}

func (c *RedisStore) Bucket(ctx context.Context, key string) ([]postal.Record, bool, error) {
	if records, ok := c.getLocal(key); ok {
		return records, true, nil
	}
	values, err := c.client.LRange(ctx, c.cityKey(key), 0, -1).Result()
	if err != nil {
		return nil, false, err
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	records := make([]postal.Record, len(values))
	for i, v := range values {
		if err := jsoncompat.Unmarshal([]byte(v), &records[i]); err != nil {
			return nil, false, fmt.Errorf("decode %s[%d]: %w", c.cityKey(key), i, err)
		}
	}
	c.setLocal(key, records)
	return records, true, nil
}

// Publish replaces every bucket previously published under Prefix with the
// buckets of idx. The writes run in one MULTI/EXEC transaction.
func (c *RedisStore) Publish(ctx context.Context, idx *index.CityIndex) error {
	old, err := c.client.SMembers(ctx, c.keysKey()).Result()
	if err != nil {
		return fmt.Errorf("list published cities: %w", err)
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range old {
			pipe.Del(ctx, c.cityKey(key))
		}
		pipe.Del(ctx, c.keysKey())
		for key, bucket := range idx.Buckets() {
			values := make([]any, len(bucket))
			for i, rec := range bucket {
				data, err := jsoncompat.Marshal(rec)
				if err != nil {
					return err
				}
				values[i] = data
			}
			pipe.RPush(ctx, c.cityKey(key), values...)
			pipe.SAdd(ctx, c.keysKey(), key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish index: %w", err)
	}

	c.mu.Lock()
	c.memCache = make(map[string]LocalEntry)
	c.mu.Unlock()
	return nil
}

func (c *RedisStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStore) Close() error {
	return c.client.Close()
}
