package delimiters

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// Registry is the thread-safe in-memory implementation of
// interfaces.DelimiterRegistry. Delimiters keep their registration order,
// which is the last tie-break when a snapshot orders its alternation.
type Registry struct {
	mu         sync.RWMutex
	families   []string
	delimiters []interfaces.Delimiter
	patterns   *PatternCache
	logger     interfaces.Logger
}

// Option customises a Registry.
type Option func(*Registry)

// WithLogger attaches the logger used for registration diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPatternCache shares a compiled pattern cache between registries.
func WithPatternCache(cache *PatternCache) Option {
	return func(r *Registry) {
		if cache != nil {
			r.patterns = cache
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.patterns == nil {
		r.patterns = NewPatternCache(DefaultPatternCacheCapacity)
	}
	return r
}

// Register adds marker pairs to family, creating the family on first use.
// Either every pair is stored or none is.
func (r *Registry) Register(family string, pairs ...[2]string) error {
	family = NormalizeFamily(family)
	if len(pairs) == 0 {
		return fmt.Errorf("%w: family %q has no marker pairs", ErrInvalidDelimiter, family)
	}
	defs := make([]interfaces.Delimiter, 0, len(pairs))
	for _, pair := range pairs {
		def := interfaces.Delimiter{Open: pair[0], Close: pair[1], Family: family}
		if err := Validate(def); err != nil {
			return err
		}
		defs = append(defs, def)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, def := range defs {
		if r.containsLocked(def) || containsDelimiter(defs[:i], def) {
			return fmt.Errorf("%w: %s %q..%q", ErrDuplicateDelimiter, family, def.Open, def.Close)
		}
	}

	if !r.hasFamilyLocked(family) {
		r.families = append(r.families, family)
	}
	r.delimiters = append(r.delimiters, defs...)

	logging.WithFamily(r.logger, family).Debug("delimiters.registry.registered", "pairs", len(defs))
	return nil
}

// RegisterDelimiter stores a single delimiter definition.
func (r *Registry) RegisterDelimiter(def interfaces.Delimiter) error {
	return r.Register(def.Family, [2]string{def.Open, def.Close})
}

// Delimiters returns every registered delimiter in registration order.
func (r *Registry) Delimiters() []interfaces.Delimiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]interfaces.Delimiter(nil), r.delimiters...)
}

// Families lists family identifiers in registration order.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.families...)
}

// Remove drops a family and its delimiters.
func (r *Registry) Remove(family string) {
	family = NormalizeFamily(family)

	r.mu.Lock()
	defer r.mu.Unlock()

	families := r.families[:0]
	for _, name := range r.families {
		if name != family {
			families = append(families, name)
		}
	}
	r.families = families

	kept := r.delimiters[:0]
	for _, def := range r.delimiters {
		if def.Family != family {
			kept = append(kept, def)
		}
	}
	r.delimiters = kept
}

// Snapshot returns the immutable set of delimiters usable on text: families
// listed in disabled are dropped, as is every delimiter whose close marker
// never occurs in text. ErrNoDelimitersActive is returned when nothing
// survives.
//
// The set is not in registration order: it follows Order (longer open
// marker first, then longer close marker, then registration order), so a
// "$$" pair wins over "$" wherever both could match. Delimiters keeps
// registration order.
func (r *Registry) Snapshot(ctx context.Context, text string, disabled []string) (*Set, error) {
	off := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		if name = NormalizeFamily(name); name != "" {
			off[name] = struct{}{}
		}
	}

	r.mu.RLock()
	active := make([]interfaces.Delimiter, 0, len(r.delimiters))
	for _, def := range r.delimiters {
		if _, skip := off[def.Family]; skip {
			continue
		}
		if !strings.Contains(text, def.Close) {
			continue
		}
		active = append(active, def)
	}
	r.mu.RUnlock()

	if len(active) == 0 {
		return nil, ErrNoDelimitersActive
	}
	return NewSet(ctx, active, r.patterns)
}

func (r *Registry) hasFamilyLocked(family string) bool {
	for _, name := range r.families {
		if name == family {
			return true
		}
	}
	return false
}

func (r *Registry) containsLocked(def interfaces.Delimiter) bool {
	return containsDelimiter(r.delimiters, def)
}

func containsDelimiter(list []interfaces.Delimiter, def interfaces.Delimiter) bool {
	for _, existing := range list {
		if existing == def {
			return true
		}
	}
	return false
}

var _ interfaces.DelimiterRegistry = (*Registry)(nil)
