// Package memstore holds contributions in process memory for the lifetime
// of the process.
package memstore

import (
	"sync"

	"marketdata-gateway/internal/application"
	"marketdata-gateway/internal/domain"

	"github.com/google/uuid"
)

var _ application.ContributionStore = (*Store)(nil)

const defaultShards = 32

type shard struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]domain.Contribution
}

// Store is a sharded map keyed by identifier. Each shard is guarded by its
// own RWMutex, so writes are atomic per key and readers of different shards
// never contend.
type Store struct {
	shards []*shard
	onSize func(delta int)
}

type Option func(*Store)

// WithSizeObserver registers fn to be told whenever an entry is added.
// Replacing an existing key does not change the size.
func WithSizeObserver(fn func(delta int)) Option { return func(s *Store) { s.onSize = fn } }

func New(shards int, opts ...Option) *Store {
	if shards <= 0 {
		shards = defaultShards
	}
	s := &Store{shards: make([]*shard, shards)}
	for i := range s.shards {
		s.shards[i] = &shard{entries: map[uuid.UUID]domain.Contribution{}}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// v4 identifiers are random in their trailing bytes, which makes the last
// byte a good enough spread across shards.
func (s *Store) shardFor(id uuid.UUID) *shard {
	return s.shards[int(id[15])%len(s.shards)]
}

func (s *Store) Upsert(id uuid.UUID, c domain.Contribution) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	_, existed := sh.entries[id]
	sh.entries[id] = c
	sh.mu.Unlock()
	if !existed && s.onSize != nil {
		s.onSize(1)
	}
}

func (s *Store) Lookup(id uuid.UUID) (domain.Contribution, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	c, ok := sh.entries[id]
	return c, ok
}

// Len counts entries across all shards. It is not a consistent snapshot
// under concurrent writes.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}
