package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
	"github.com/zeebo/blake3"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache: miss")

const (
	// DefaultCapacity bounds the number of cached fragments.
	DefaultCapacity = 1024
	// DefaultTTL is how long a filtered fragment stays cached.
	DefaultTTL = 10 * time.Minute

	shards          = 8
	evictionPercent = 10
)

// Memory is an in-process interfaces.CacheProvider backed by sturdyc. Entry
// lifetime is fixed per cache; the ttl passed to Set is ignored.
type Memory struct {
	mu       sync.RWMutex
	client   *sturdyc.Client[any]
	capacity int
	ttl      time.Duration
}

// NewMemory creates a cache holding up to capacity entries for ttl.
// Non-positive values fall back to the defaults.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{capacity: capacity, ttl: ttl}
	m.client = m.newClient()
	return m
}

func (m *Memory) newClient() *sturdyc.Client[any] {
	return sturdyc.New[any](m.capacity, shards, m.ttl, evictionPercent)
}

func (m *Memory) Get(_ context.Context, key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.client.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.client.Set(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.client.Delete(key)
	return nil
}

// Clear drops every entry by swapping in a fresh client.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = m.newClient()
	return nil
}

// Size reports the number of cached entries.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client.Size()
}

var _ interfaces.CacheProvider = (*Memory)(nil)

// Key derives a cache key from the parts in order. Parts are length
// prefixed so ("ab", "c") and ("a", "bc") never collide.
func Key(parts ...string) string {
	h := blake3.New()
	var size [8]byte
	for _, part := range parts {
		n := uint64(len(part))
		for i := range size {
			size[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(size[:])
		_, _ = h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
