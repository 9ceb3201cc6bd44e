package validator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketdata-gateway/internal/application"
	"marketdata-gateway/internal/contract"
	"marketdata-gateway/internal/domain"
	"marketdata-gateway/internal/infrastructure/httpx"
	"marketdata-gateway/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

const (
	validatePath = "/validate"
	healthPath   = "/health"
)

var (
	_ application.Validator     = (*Remote)(nil)
	_ application.HealthChecker = (*Remote)(nil)
)

// Remote asks an external validation service over HTTP. Each call is a
// single attempt bounded by Timeout.
type Remote struct {
	BaseURL string
	Client  *httpx.Client
	Timeout time.Duration
	Tracer  application.Tracer
	Log     *zap.Logger
}

type validateResp struct {
	ID           string `json:"id"`
	IsSuccessful bool   `json:"isSuccessful"`
}

func (r *Remote) endpoint(path string) (string, error) {
	if r.BaseURL == "" {
		return "", errors.New("remote validator: missing base url")
	}
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		return "", fmt.Errorf("remote validator: invalid base url: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}

func (r *Remote) Validate(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error) {
	defer metrics.ObserveDuration(metrics.ValidationDuration, time.Now(), "remote")
	tracer := r.Tracer
	if tracer == nil {
		tracer = application.NoopTracer{}
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	ctx, span := tracer.Start(ctx, "Validate")
	defer span.End()
	span.Event("StartValidate")

	target, err := r.endpoint(validatePath)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	env, err := contract.NewEnvelope(c)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("remote validator: %w", err)
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var out validateResp
	if err := r.client().PostJSON(ctx, target, env, &out); err != nil {
		log.Warn("validator.remote_failed", zap.String("market_data_type", c.MarketDataType().String()), zap.Error(err))
		return domain.ValidationResult{}, fmt.Errorf("remote validator: %w", err)
	}
	log.Info("validator.validated",
		zap.String("market_data_type", c.MarketDataType().String()),
		zap.String("id", out.ID),
		zap.Bool("is_successful", out.IsSuccessful),
	)

	span.Event("EndValidate")
	return domain.ValidationResult{ID: out.ID, IsSuccessful: out.IsSuccessful}, nil
}

// Health reports whether the validation service answers its health probe.
func (r *Remote) Health(ctx context.Context) error {
	target, err := r.endpoint(healthPath)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return r.client().DoJSON(req, nil)
}

func (r *Remote) client() *httpx.Client {
	if r.Client == nil {
		return &httpx.Client{}
	}
	return r.Client
}
