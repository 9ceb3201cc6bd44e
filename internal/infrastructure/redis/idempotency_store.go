package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketdata-gateway/internal/application"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "marketdata-gateway:idem:"
	// pending marks a reservation whose submission has not finished.
	pending = "pending"
)

var (
	_ application.IdempotencyStore = (*Store)(nil)

	ErrEmptyKey = errors.New("idempotency key is empty")
)

// Store reserves submission keys with SET NX so concurrent gateways
// sharing one redis agree on the first submitter.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	reserved, err := s.Client.SetNX(ctx, keyPrefix+key, pending, s.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return reserved, nil
}

// Complete overwrites the reservation with response, keeping its TTL.
func (s *Store) Complete(ctx context.Context, key string, response []byte) error {
	if err := s.Client.SetXX(ctx, keyPrefix+key, response, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *Store) Recall(ctx context.Context, key string) ([]byte, error) {
	b, err := s.Client.Get(ctx, keyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("recall idempotency key: %w", err)
	case string(b) == pending:
		return nil, nil
	}
	return b, nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Ping backs the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
