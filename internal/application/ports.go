package application

import (
	"context"

	"marketdata-gateway/internal/domain"

	"github.com/google/uuid"
)

// Validator decides whether a contribution is accepted and issues the
// identifier it will be stored under. Implementations must honor ctx.
type Validator interface {
	Validate(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error)
}

// HealthChecker is implemented by validators that can report reachability.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ContributionStore is safe for concurrent use without caller-side locking.
// Neither operation performs I/O.
type ContributionStore interface {
	Upsert(id uuid.UUID, c domain.Contribution)
	Lookup(id uuid.UUID) (domain.Contribution, bool)
}
