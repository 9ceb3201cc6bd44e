package config

import "time"

const (
	DefaultHTTPPort          = "8080"
	DefaultServiceName       = "marketdata-gateway"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultRequestTimeout    = 3 * time.Second
	DefaultStoreShards       = 32
	DefaultIdempotencyTTL    = 24 * time.Hour
	MaxRequestBodyBytes      = 1 << 20
)
