package cache

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	memoryCapacity           = 10000
	memoryShards             = 64
	memoryEvictionPercentage = 10
)

// MemoryStore backs Store with an in-process sharded TTL cache. The TTL is
// fixed at construction; sturdyc applies it uniformly to every entry, which
// matches the uniform-TTL policy of the service layer.
type MemoryStore struct {
	client *sturdyc.Client[[]byte]
}

// NewMemoryStore creates an in-process store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		client: sturdyc.New[[]byte](memoryCapacity, memoryShards, ttl, memoryEvictionPercentage),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := s.client.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return val, nil
}

// Set implements Store. The per-call ttl is ignored; the client-wide TTL
// set at construction applies.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.client.Set(key, value)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}
