package httpserver

import (
	"context"
	"net/http"
	"sync"

	"marketdata-gateway/internal/application"
	"marketdata-gateway/internal/contract"
	"marketdata-gateway/internal/domain"
	"marketdata-gateway/internal/infrastructure/memstore"
	"marketdata-gateway/internal/infrastructure/validator"
)

var _ application.Validator = validatorFunc(nil)

type validatorFunc func(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error)

func (f validatorFunc) Validate(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error) {
	return f(ctx, c)
}

type fakeIdem struct {
	mu       sync.Mutex
	seen     map[string][]byte
	released []string
	err      error
}

func (f *fakeIdem) TryReserve(_ context.Context, k string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string][]byte{}
	}
	if _, ok := f.seen[k]; ok {
		return false, nil
	}
	f.seen[k] = nil
	return true, nil
}

func (f *fakeIdem) Complete(_ context.Context, k string, resp []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[k] = resp
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, k string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[k], nil
}

func (f *fakeIdem) Release(_ context.Context, k string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, k)
	f.released = append(f.released, k)
	return nil
}

// pending marks k as reserved by a submission that has not finished.
func (f *fakeIdem) pending(k string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string][]byte{}
	}
	f.seen[k] = nil
}

func newServer(v application.Validator, idem application.IdempotencyStore) *Server {
	svc := application.NewGatewayService(v, memstore.New(4))
	return NewServer(contract.NewDispatcher(svc, nil), idem)
}

func setup() http.Handler {
	return NewRouter(newServer(validator.NewStub(nil, nil), nil))
}
