package interfaces

import (
	"context"
	"time"
)

// Delimiter pairs an opening and closing marker with the family that owns
// them. Markers are matched literally; several delimiters may share a family
// and markers may overlap lexically across families.
type Delimiter struct {
	Open   string `json:"open" yaml:"open"`
	Close  string `json:"close" yaml:"close"`
	Family string `json:"family" yaml:"family"`
}

// DelimiterRegistry stores the delimiter catalogue consulted by the filter.
// Implementations must be safe for concurrent use.
type DelimiterRegistry interface {
	// Register adds delimiter pairs to a family, creating the family on first use.
	Register(family string, pairs ...[2]string) error
	// Delimiters returns every registered delimiter in registration order.
	Delimiters() []Delimiter
	// Families lists family identifiers in registration order.
	Families() []string
	// Remove drops a family and all its delimiters. Unknown families are a no-op.
	Remove(family string)
}

// MathFilter rewrites HTML fragments so every delimited span is isolated in
// a wrapper element tagged with its family.
type MathFilter interface {
	Filter(ctx context.Context, fragment string, opts FilterOptions) (string, error)
}

// FilterOptions carries per-call overrides. DisabledFamilies is merged with
// the configured disabled set; Handlers replaces the configured handler map
// for the families it names.
type FilterOptions struct {
	DisabledFamilies []string
	Handlers         map[string]FamilyHandler
	SkipHandlers     bool
}

// WrapperNode is the view of a finalised wrapper element handed to family
// handlers. Changes are applied to the live tree before serialisation.
type WrapperNode interface {
	Family() string
	Text() string
	Attribute(key string) (string, bool)
	SetAttribute(key, value string)
	// SetText replaces the wrapper children with a single text node.
	SetText(text string)
	// SetHTML replaces the wrapper children with the parsed fragment.
	SetHTML(fragment string) error
}

// FamilyHandler consumes wrappers tagged with the family it is registered for.
type FamilyHandler interface {
	Process(ctx context.Context, node WrapperNode) error
}

// FamilyHandlerFunc adapts a plain function into a FamilyHandler.
type FamilyHandlerFunc func(ctx context.Context, node WrapperNode) error

// Process calls f(ctx, node).
func (f FamilyHandlerFunc) Process(ctx context.Context, node WrapperNode) error {
	return f(ctx, node)
}

// FilterMetrics records filter telemetry. Implementations must be safe for
// concurrent use.
type FilterMetrics interface {
	ObserveFilterDuration(duration time.Duration)
	IncrementWrapped(family string)
	IncrementSkipped(reason string)
	IncrementHandlerError(family string)
	IncrementCacheHit()
}
