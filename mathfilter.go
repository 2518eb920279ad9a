package mathfilter

import (
	"context"
	"io"

	goerrors "github.com/goliatone/go-errors"

	filtercmd "github.com/goliatone/go-mathfilter/internal/commands/filter"
	"github.com/goliatone/go-mathfilter/internal/di"
	"github.com/goliatone/go-mathfilter/internal/filter"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

const configInvalidCode = "CONFIG_INVALID"

// Delimiter exports the delimiter definition.
type Delimiter = interfaces.Delimiter

// FilterOptions exports the per-call filter overrides.
type FilterOptions = interfaces.FilterOptions

// FamilyHandler exports the post-processing handler contract.
type FamilyHandler = interfaces.FamilyHandler

// FamilyHandlerFunc adapts a function into a FamilyHandler.
type FamilyHandlerFunc = interfaces.FamilyHandlerFunc

// WrapperNode exports the wrapper view handed to family handlers.
type WrapperNode = interfaces.WrapperNode

// Document exports the rendered Markdown document.
type Document = interfaces.Document

// Commands exports the command handlers bound to the module services.
type Commands = filtercmd.HandlerSet

// Option customises module wiring.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithMetrics        = di.WithMetrics
	WithCacheProvider  = di.WithCacheProvider
	WithFamilyHandler  = di.WithFamilyHandler
	WithMarkdownParser = di.WithMarkdownParser
	WithoutMarkdown    = di.WithoutMarkdown
	WithCommandOutput  = di.WithCommandOutput
)

// ClassHandler returns a handler adding "<prefix><family>" to the wrapper
// class list. An empty prefix uses "local-math-".
func ClassHandler(prefix string) FamilyHandler {
	return filter.ClassHandler(prefix)
}

// Module is the top level filter runtime.
type Module struct {
	container *di.Container
}

// New validates cfg and constructs a module. Configuration errors carry the
// validation category.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid mathfilter configuration").
			WithTextCode(configInvalidCode)
	}
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Filter isolates every delimited span of fragment in a wrapper element.
func (m *Module) Filter(ctx context.Context, fragment string, opts FilterOptions) (string, error) {
	return m.container.FilterService().Filter(ctx, fragment, opts)
}

// FilterReader reads r fully and filters it.
func (m *Module) FilterReader(ctx context.Context, r io.Reader, opts FilterOptions) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return m.Filter(ctx, string(data), opts)
}

// Filterer returns the filter as its interface.
func (m *Module) Filterer() interfaces.MathFilter {
	return m.container.FilterService()
}

// Registry returns the live delimiter registry. Families registered here
// apply to subsequent Filter calls.
func (m *Module) Registry() interfaces.DelimiterRegistry {
	return m.container.Registry()
}

// Delimiters lists the registered delimiters in registration order.
func (m *Module) Delimiters() []Delimiter {
	return m.container.Registry().Delimiters()
}

// Markdown returns the Markdown service, or nil when built WithoutMarkdown.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

// Commands returns the command handlers bound to the module services.
func (m *Module) Commands() *Commands {
	return m.container.Commands()
}

// Config returns the validated configuration the module was built from.
func (m *Module) Config() Config {
	return m.container.Config
}

// LoggerProvider returns the provider the module logs through.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}
