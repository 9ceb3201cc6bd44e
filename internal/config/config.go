package config

import (
	"os"
	"strconv"
	"time"

	infraconfig "marketdata-gateway/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env         string
	LogLevel    string
	ServiceName string
	// API
	Port        string
	StoreShards int
	// Validator
	Validator      string
	ValidatorURL   string
	ValidatorToken string
	RequestTimeout time.Duration
	// Redis (idempotency)
	IdempotencyBackend string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisTTL           time.Duration
	// Tracing
	TracingEndpoint    string
	TracingSampleRatio float64
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func floatDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func durMS(key string, def time.Duration) time.Duration {
	ms := atoiDef(getEnv(key, ""), int(def/time.Millisecond))
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", infraconfig.DefaultServiceName),
		Port:               getEnv("PORT", infraconfig.DefaultHTTPPort),
		StoreShards:        atoiDef(getEnv("STORE_SHARDS", ""), infraconfig.DefaultStoreShards),
		Validator:          getEnv("VALIDATOR", "stub"),
		ValidatorURL:       getEnv("VALIDATOR_URL", ""),
		ValidatorToken:     getEnv("VALIDATOR_TOKEN", ""),
		RequestTimeout:     durMS("REQUEST_TIMEOUT_MS", infraconfig.DefaultRequestTimeout),
		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "none"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:           durMS("IDEMPOTENCY_TTL_MS", infraconfig.DefaultIdempotencyTTL),
		TracingEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TracingSampleRatio: floatDef(getEnv("TRACING_SAMPLE_RATIO", ""), 1),
	}
}
