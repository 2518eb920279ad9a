package interfaces

import (
	"context"
	"time"
)

// CacheProvider stores filtered fragments keyed by a content fingerprint.
// A miss is reported through a non-nil error.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
