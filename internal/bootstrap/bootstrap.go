package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"marketdata-gateway/internal/application"
	"marketdata-gateway/internal/config"
	"marketdata-gateway/internal/contract"
	infraconfig "marketdata-gateway/internal/infrastructure/config"
	httpserver "marketdata-gateway/internal/infrastructure/http"
	"marketdata-gateway/internal/infrastructure/httpx"
	"marketdata-gateway/internal/infrastructure/memstore"
	"marketdata-gateway/internal/infrastructure/metrics"
	redisstore "marketdata-gateway/internal/infrastructure/redis"
	"marketdata-gateway/internal/infrastructure/tracing"
	"marketdata-gateway/internal/infrastructure/validator"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMissingValidatorURL = errors.New("VALIDATOR_URL is required for VALIDATOR=http")
	ErrUnknownValidator    = errors.New("unknown VALIDATOR")
	ErrUnknownIdempotency  = errors.New("unknown IDEMPOTENCY_BACKEND")
)

type Validator interface {
	application.Validator
	application.HealthChecker
}

// BuildTracer exports spans over OTLP/HTTP when OTEL_EXPORTER_OTLP_ENDPOINT
// is set; otherwise spans are dropped. The cleanup flushes pending spans.
func BuildTracer(ctx context.Context, cfg config.Config, log *zap.Logger) (application.Tracer, func(), error) {
	shutdown, err := tracing.Setup(ctx, tracing.ProviderConfig{
		Endpoint:    cfg.TracingEndpoint,
		ServiceName: cfg.ServiceName,
		SampleRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, func() {}, err
	}
	if cfg.TracingEndpoint != "" {
		log.Info("tracing.enabled",
			zap.String("endpoint", cfg.TracingEndpoint),
			zap.Float64("sample_ratio", cfg.TracingSampleRatio),
		)
	}
	cleanup := func() {
		c, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
		defer cancel()
		if err := shutdown(c); err != nil {
			log.Warn("tracing.shutdown_failed", zap.Error(err))
		}
	}
	return tracing.New(cfg.ServiceName), cleanup, nil
}

// BuildValidator selects the validator named by VALIDATOR ("stub" or "http").
func BuildValidator(cfg config.Config, tracer application.Tracer, log *zap.Logger) (Validator, error) {
	switch cfg.Validator {
	case "", "stub":
		return validator.NewStub(tracer, log), nil
	case "http":
		if cfg.ValidatorURL == "" {
			return nil, ErrMissingValidatorURL
		}
		return &validator.Remote{
			BaseURL: cfg.ValidatorURL,
			Client:  &httpx.Client{HTTP: &http.Client{}, Token: cfg.ValidatorToken},
			Timeout: cfg.RequestTimeout,
			Tracer:  tracer,
			Log:     log,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownValidator, cfg.Validator)
	}
}

func BuildStore(cfg config.Config) *memstore.Store {
	return memstore.New(cfg.StoreShards, memstore.WithSizeObserver(metrics.AddStoreEntries))
}

// BuildIdempotency returns the deduplication store named by
// IDEMPOTENCY_BACKEND ("none" or "redis") and its cleanup.
func BuildIdempotency(cfg config.Config) (application.IdempotencyStore, func(), error) {
	switch cfg.IdempotencyBackend {
	case "", "none":
		return application.NoopIdempotency{}, func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return redisstore.New(rdb, cfg.RedisTTL), func() { _ = rdb.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("%w: %q", ErrUnknownIdempotency, cfg.IdempotencyBackend)
	}
}

// BuildAPI assembles the HTTP handler. Readiness covers the validator and,
// when redis backs idempotency, the redis connection.
func BuildAPI(ctx context.Context, cfg config.Config, log *zap.Logger) (http.Handler, func(), error) {
	tracer, closeTracer, err := BuildTracer(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, err
	}

	v, err := BuildValidator(cfg, tracer, log)
	if err != nil {
		closeTracer()
		return nil, func() {}, err
	}
	idem, closeIdem, err := BuildIdempotency(cfg)
	if err != nil {
		closeTracer()
		return nil, func() {}, err
	}
	cleanup := func() {
		closeIdem()
		closeTracer()
	}

	svc := application.NewGatewayService(v, BuildStore(cfg),
		application.WithTracer(tracer),
		application.WithLogger(log),
	)
	srv := httpserver.NewServer(contract.NewDispatcher(svc, log), idem)
	srv.SetReadyCheck(func(ctx context.Context) error {
		if err := v.Health(ctx); err != nil {
			return err
		}
		if p, ok := idem.(interface{ Ping(context.Context) error }); ok {
			return p.Ping(ctx)
		}
		return nil
	})
	return httpserver.NewRouter(srv), cleanup, nil
}
