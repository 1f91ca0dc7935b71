package main

import (
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/matst80/zipfinder/pkg/postal"
)

const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
)

type config struct {
	Host          string
	Port          string
	DebugAddress  string
	Country       string
	DataDir       string
	Dataset       string
	CSV           postal.CSVConfig
	Store         string
	RedisUrl      string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	PostgresUrl   string
	RabbitUrl     string
	CacheTime     string
}

func getEnv(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

func loadConfig() config {
	cfg := config{
		Host:          os.Getenv("HOST"),
		Port:          getEnv("PORT", "8080"),
		DebugAddress:  getEnv("DEBUG_ADDR", ":8081"),
		Country:       os.Getenv("COUNTRY"),
		DataDir:       getEnv("DATA_DIR", "data"),
		Dataset:       getEnv("DATASET", "zips.json"),
		CSV:           postal.DefaultCSVConfig(),
		Store:         getEnv("STORE", storeMemory),
		RedisUrl:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   getEnv("REDIS_PREFIX", "zipfinder"),
		PostgresUrl:   os.Getenv("PG_URL"),
		RabbitUrl:     os.Getenv("RABBIT_URL"),
		CacheTime:     getEnv("CACHE_TIME", "3600"),
	}
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.RedisDB = v
	}
	cfg.CSV.HeaderZipCode = getEnv("CSV_ZIP_COLUMN", cfg.CSV.HeaderZipCode)
	cfg.CSV.HeaderCity = getEnv("CSV_CITY_COLUMN", cfg.CSV.HeaderCity)
	if d := os.Getenv("CSV_DELIMITER"); d != "" {
		r, _ := utf8.DecodeRuneInString(d)
		cfg.CSV.Delimiter = r
	}
	return cfg
}

func (c config) listenAddress() string {
	return c.Host + ":" + c.Port
}
