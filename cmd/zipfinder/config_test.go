package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{"HOST", "PORT", "DATASET", "STORE", "CSV_DELIMITER", "REDIS_DB"} {
		t.Setenv(name, "")
	}
	cfg := loadConfig()
	assert.Equal(t, ":8080", cfg.listenAddress())
	assert.Equal(t, "zips.json", cfg.Dataset)
	assert.Equal(t, storeMemory, cfg.Store)
	assert.Equal(t, ',', cfg.CSV.Delimiter)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "80")
	t.Setenv("STORE", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("CSV_CITY_COLUMN", "poststed")

	cfg := loadConfig()
	assert.Equal(t, "127.0.0.1:80", cfg.listenAddress())
	assert.Equal(t, storeRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, ';', cfg.CSV.Delimiter)
	assert.Equal(t, "poststed", cfg.CSV.HeaderCity)
}
