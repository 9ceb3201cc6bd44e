package application

import (
	"context"
	"fmt"

	"marketdata-gateway/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatewayService runs contributions through validation and keeps the
// accepted ones retrievable by the identifier the validator issued.
type GatewayService struct {
	validator Validator
	store     ContributionStore
	tracer    Tracer
	log       *zap.Logger
}

type Option func(*GatewayService)

func WithTracer(t Tracer) Option     { return func(s *GatewayService) { s.tracer = t } }
func WithLogger(l *zap.Logger) Option { return func(s *GatewayService) { s.log = l } }

func NewGatewayService(validator Validator, store ContributionStore, opts ...Option) *GatewayService {
	s := &GatewayService{
		validator: validator,
		store:     store,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = NoopTracer{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Process validates c and, only when validation succeeds, stores it under
// the issued identifier. A failed validation is returned as a result, not
// an error, and leaves the store untouched.
func (s *GatewayService) Process(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error) {
	ctx, span := s.tracer.Start(ctx, "Process")
	defer span.End()
	span.Event("StartProcess", A("market_data_type", c.MarketDataType().String()))

	res, err := s.validator.Validate(ctx, c)
	span.Event("EndProcess")
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate %s: %w", c.MarketDataType(), err)
	}

	log := s.log.With(
		zap.String("market_data_type", c.MarketDataType().String()),
		zap.String("id", res.ID),
	)
	if !res.IsSuccessful {
		log.Info("gateway.validation_rejected")
		return res, nil
	}

	// The validator owns identifier issuance; a success without a usable
	// identifier cannot be stored.
	id, err := uuid.Parse(res.ID)
	if err != nil {
		log.Error("gateway.invalid_identifier", zap.Error(err))
		return domain.ValidationResult{}, fmt.Errorf("%w: validator issued %q", ErrInvalidIdentifier, res.ID)
	}
	s.store.Upsert(id, c)
	span.Event("Stored", A("id", res.ID))
	log.Info("gateway.stored")
	return res, nil
}

// Retrieve returns the contribution stored under id. A missing entry is
// reported through ok, never as an error.
func (s *GatewayService) Retrieve(ctx context.Context, id uuid.UUID) (c domain.Contribution, ok bool) {
	_, span := s.tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.Event("StartRetrieve", A("id", id.String()))

	s.log.Info("gateway.fetching", zap.String("id", id.String()))
	c, ok = s.store.Lookup(id)

	span.Event("EndRetrieve")
	return c, ok
}
