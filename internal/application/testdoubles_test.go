package application

import (
	"context"
	"errors"
	"sync"

	"marketdata-gateway/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrValidator = errors.New("validator error")
)

type fakeValidator struct {
	mu     sync.Mutex
	calls  int
	out    *domain.ValidationResult
	err    error
	blockC chan struct{}
}

func (f *fakeValidator) Validate(ctx context.Context, _ domain.Contribution) (domain.ValidationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.blockC != nil {
		select {
		case <-ctx.Done():
			return domain.ValidationResult{}, ctx.Err()
		case <-f.blockC:
		}
	}
	if f.err != nil {
		return domain.ValidationResult{}, f.err
	}
	if f.out != nil {
		return *f.out, nil
	}
	return domain.ValidationResult{ID: uuid.NewString(), IsSuccessful: true}, nil
}

func (f *fakeValidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]domain.Contribution
	upserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[uuid.UUID]domain.Contribution{}}
}

func (f *fakeStore) Upsert(id uuid.UUID, c domain.Contribution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.entries[id] = c
}

func (f *fakeStore) Lookup(id uuid.UUID) (domain.Contribution, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.entries[id]
	return c, ok
}

type recordingTracer struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, &recordingSpan{t: r}
}

type recordingSpan struct{ t *recordingTracer }

func (s *recordingSpan) Event(name string, _ ...Attr) {
	s.t.mu.Lock()
	s.t.events = append(s.t.events, name)
	s.t.mu.Unlock()
}

func (s *recordingSpan) End() {}
