package delimiters

import (
	"context"
	"regexp"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	// DefaultPatternCacheCapacity bounds the number of compiled alternations kept.
	DefaultPatternCacheCapacity = 256

	patternCacheShards     = 4
	patternCacheTTL        = time.Hour
	patternCacheEvictionPc = 10
)

// PatternCache memoises compiled alternations by pattern source. The active
// set differs per document only through the close-marker pre-filter, so a
// small cache covers most traffic.
type PatternCache struct {
	client *sturdyc.Client[*regexp.Regexp]
}

// NewPatternCache creates a cache holding up to capacity compiled patterns.
func NewPatternCache(capacity int) *PatternCache {
	if capacity <= 0 {
		capacity = DefaultPatternCacheCapacity
	}
	return &PatternCache{
		client: sturdyc.New[*regexp.Regexp](capacity, patternCacheShards, patternCacheTTL, patternCacheEvictionPc),
	}
}

// Compile returns the cached pattern for source, compiling it on a miss.
func (c *PatternCache) Compile(ctx context.Context, source string) (*regexp.Regexp, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.client.GetOrFetch(ctx, source, func(context.Context) (*regexp.Regexp, error) {
		return regexp.Compile(source)
	})
}

// Size reports how many patterns are currently cached.
func (c *PatternCache) Size() int {
	return c.client.Size()
}
