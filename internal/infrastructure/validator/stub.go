package validator

import (
	"context"
	"time"

	"marketdata-gateway/internal/application"
	"marketdata-gateway/internal/domain"
	"marketdata-gateway/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	_ application.Validator     = (*Stub)(nil)
	_ application.HealthChecker = (*Stub)(nil)
)

// Stub accepts every contribution and issues a fresh random identifier. It
// performs no business-rule checks on the payload.
type Stub struct {
	Tracer application.Tracer
	Log    *zap.Logger
}

func NewStub(tracer application.Tracer, log *zap.Logger) *Stub {
	if tracer == nil {
		tracer = application.NoopTracer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stub{Tracer: tracer, Log: log}
}

func (s *Stub) Validate(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error) {
	defer metrics.ObserveDuration(metrics.ValidationDuration, time.Now(), "stub")
	ctx, span := s.Tracer.Start(ctx, "Validate")
	defer span.End()
	span.Event("StartValidate")

	if err := ctx.Err(); err != nil {
		return domain.ValidationResult{}, err
	}
	res := domain.ValidationResult{ID: uuid.NewString(), IsSuccessful: true}
	s.Log.Info("validator.validated",
		zap.String("market_data_type", c.MarketDataType().String()),
		zap.String("id", res.ID),
	)

	span.Event("EndValidate")
	return res, nil
}

func (s *Stub) Health(context.Context) error { return nil }
