package application

import "context"

// IdempotencyStore tracks submissions keyed by X-Idempotency-Key. A key is
// reserved while its submission runs, then either completed with the
// response to replay on repeats or released so the caller can retry.
type IdempotencyStore interface {
	// TryReserve reports whether key was free; false means a repeat.
	TryReserve(ctx context.Context, key string) (bool, error)
	// Complete records the response issued for key.
	Complete(ctx context.Context, key string, response []byte) error
	// Recall returns the response recorded for key, or nil while the
	// submission holding the key is still running.
	Recall(ctx context.Context, key string) ([]byte, error)
	// Release frees key after a submission that issued no outcome.
	Release(ctx context.Context, key string) error
}

// NoopIdempotency never sees a repeat. Used when IDEMPOTENCY_BACKEND=none.
type NoopIdempotency struct{}

func (NoopIdempotency) TryReserve(context.Context, string) (bool, error) { return true, nil }
func (NoopIdempotency) Complete(context.Context, string, []byte) error { return nil }
func (NoopIdempotency) Recall(context.Context, string) ([]byte, error) { return nil, nil }
func (NoopIdempotency) Release(context.Context, string) error { return nil }
