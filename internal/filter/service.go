package filter

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-mathfilter/internal/cache"
	"github.com/goliatone/go-mathfilter/internal/delimiters"
	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/internal/markup"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

const (
	// DefaultWrapperTag is the element wrapping every matched span.
	DefaultWrapperTag = "math-span"
	// DefaultFamilyAttribute carries the family identifier on wrappers.
	DefaultFamilyAttribute = "family"

	parseFailedCode   = "FILTER_PARSE_FAILED"
	renderFailedCode  = "FILTER_RENDER_FAILED"
	patternFailedCode = "FILTER_PATTERN_FAILED"
	canceledCode      = "FILTER_CANCELED"
)

// Service rewrites HTML fragments so each delimited span ends up in its own
// wrapper element. A Service is safe for concurrent use; every call builds
// and owns its own tree.
type Service struct {
	registry        *delimiters.Registry
	logger          interfaces.Logger
	metrics         interfaces.FilterMetrics
	handlers        map[string]interfaces.FamilyHandler
	cache           interfaces.CacheProvider
	cacheTTL        time.Duration
	transparent     map[string]struct{}
	transparentTags []string
	wrapperTag      string
	familyAttribute string
	maxDepth        int
	disabled        []string
	newRunID        func() string
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the metrics recorder used for telemetry.
func WithMetrics(metrics interfaces.FilterMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithHandler registers the handler invoked for wrappers of family.
func WithHandler(family string, handler interfaces.FamilyHandler) ServiceOption {
	return func(s *Service) {
		if handler != nil {
			s.handlers[normalizeKey(family)] = handler
		}
	}
}

// WithHandlers registers several family handlers at once.
func WithHandlers(handlers map[string]interfaces.FamilyHandler) ServiceOption {
	return func(s *Service) {
		s.handlers = mergeHandlers(s.handlers, handlers)
	}
}

// WithCache enables the result cache. Cached output assumes the service
// handlers are deterministic for a given wrapper; calls carrying their own
// FilterOptions.Handlers bypass the cache.
func WithCache(provider interfaces.CacheProvider, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if provider != nil {
			s.cache = provider
			s.cacheTTL = ttl
		}
	}
}

// WithTransparentTags replaces the set of containers flattened into runs.
func WithTransparentTags(tags ...string) ServiceOption {
	return func(s *Service) {
		s.transparent = transparentSet(tags)
	}
}

// WithWrapperTag overrides the wrapper element name.
func WithWrapperTag(tag string) ServiceOption {
	return func(s *Service) {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			s.wrapperTag = tag
		}
	}
}

// WithFamilyAttribute overrides the attribute holding the family identifier.
func WithFamilyAttribute(name string) ServiceOption {
	return func(s *Service) {
		if name = strings.TrimSpace(name); name != "" {
			s.familyAttribute = name
		}
	}
}

// WithMaxDepth bounds transparent recursion; deeper containers are opaque.
func WithMaxDepth(depth int) ServiceOption {
	return func(s *Service) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithDisabledFamilies sets the families skipped on every call.
func WithDisabledFamilies(families ...string) ServiceOption {
	return func(s *Service) {
		s.disabled = append([]string(nil), families...)
	}
}

// WithRunIDGenerator overrides how filter runs are identified in logs.
func WithRunIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// NewService constructs a filter service over registry.
func NewService(registry *delimiters.Registry, opts ...ServiceOption) *Service {
	service := &Service{
		registry:        registry,
		logger:          logging.NoOp(),
		metrics:         NoOpMetrics(),
		handlers:        map[string]interfaces.FamilyHandler{},
		transparent:     transparentSet(DefaultTransparentTags),
		wrapperTag:      DefaultWrapperTag,
		familyAttribute: DefaultFamilyAttribute,
		maxDepth:        DefaultMaxDepth,
		newRunID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	// a transparent wrapper would be re-entered by the next pass
	delete(service.transparent, service.wrapperTag)

	service.transparentTags = make([]string, 0, len(service.transparent))
	for tag := range service.transparent {
		service.transparentTags = append(service.transparentTags, tag)
	}
	sort.Strings(service.transparentTags)
	return service
}

// Filter wraps every delimited span of fragment. Input without usable
// delimiters, or in which nothing gets wrapped, is returned unchanged.
// Codec failures return the unchanged input together with the error.
func (s *Service) Filter(ctx context.Context, fragment string, opts interfaces.FilterOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return fragment, wrapCanceled(err)
	}
	if s.registry == nil || fragment == "" {
		return fragment, nil
	}

	started := time.Now()
	defer func() { s.metrics.ObserveFilterDuration(time.Since(started)) }()

	logger := logging.WithFilterRun(s.baseLogger(ctx), s.newRunID(), "")
	disabled := append(append([]string(nil), s.disabled...), opts.DisabledFamilies...)

	set, err := s.registry.Snapshot(ctx, fragment, disabled)
	if errors.Is(err, delimiters.ErrNoDelimitersActive) {
		s.metrics.IncrementSkipped(SkipNoDelimiters)
		logger.Debug("filter.service.no_delimiters")
		return fragment, nil
	}
	if err != nil {
		logging.WithFields(logger, map[string]any{"error": err}).Error("filter.service.pattern_failed")
		return fragment, goerrors.Wrap(err, goerrors.CategoryInternal, "compile delimiter pattern").
			WithTextCode(patternFailedCode)
	}

	handlers := s.handlers
	if len(opts.Handlers) > 0 {
		handlers = mergeHandlers(s.handlers, opts.Handlers)
	}

	// per-call handlers have no stable identity to key on
	cacheable := s.cache != nil && (len(opts.Handlers) == 0 || opts.SkipHandlers)
	key := ""
	if cacheable {
		key = s.cacheKey(set, handlers, opts.SkipHandlers, fragment)
		if cached, err := s.cache.Get(ctx, key); err == nil {
			if out, ok := cached.(string); ok {
				s.metrics.IncrementCacheHit()
				logger.Debug("filter.service.cache_hit")
				return out, nil
			}
		}
	}

	out, err := s.rewrite(ctx, set, fragment, handlers, opts.SkipHandlers, logger)
	if err != nil {
		return fragment, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
			logging.WithFields(logger, map[string]any{"error": err}).Warn("filter.service.cache_store_failed")
		}
	}
	return out, nil
}

func (s *Service) rewrite(ctx context.Context, set *delimiters.Set, fragment string, handlers map[string]interfaces.FamilyHandler, skipHandlers bool, logger interfaces.Logger) (string, error) {
	tree, err := markup.ParseFragment(fragment)
	if err != nil {
		logging.WithFields(logger, map[string]any{"error": err}).Error("filter.service.parse_failed")
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "parse fragment").
			WithTextCode(parseFailedCode)
	}

	flat := newFlattener(tree, s.transparent, s.maxDepth)
	runs := flat.flatten(tree.Root())
	if flat.depthExceeded {
		s.metrics.IncrementSkipped(SkipDepthExceeded)
		logging.WithFields(logger, map[string]any{"max_depth": s.maxDepth}).Warn("filter.flatten.depth_exceeded")
	}

	rw := &rewriter{tree: tree, wrapperTag: s.wrapperTag}
	res := &resolver{tree: tree, set: set, attribute: s.familyAttribute, transparent: s.transparent}

	var wrappers []wrapped
	for i := len(runs) - 1; i >= 0; i-- {
		matches, err := locate(set.Pattern(), runs[i].text)
		if err != nil {
			s.metrics.IncrementSkipped(SkipNoMatch)
			logging.WithFields(logger, map[string]any{"run": i}).Debug("filter.locate.no_match")
			continue
		}
		for j := len(matches) - 1; j >= 0; j-- {
			m := matches[j]
			node, err := rw.wrap(runs[i], m)
			if err != nil {
				s.metrics.IncrementSkipped(SkipSplitBoundary)
				logging.WithFields(logger, map[string]any{
					"error": err,
					"run":   i,
					"start": m.Start,
					"end":   m.End,
				}).Warn("filter.match.skipped")
				continue
			}
			def, err := res.resolve(node)
			if err != nil {
				s.metrics.IncrementSkipped(SkipUnresolved)
				logging.WithFields(logger, map[string]any{
					"error": err,
					"text":  m.Text,
				}).Warn("filter.resolve.unresolved")
				wrappers = append(wrappers, wrapped{node: node})
				continue
			}
			s.metrics.IncrementWrapped(def.Family)
			wrappers = append(wrappers, wrapped{node: node, family: def.Family})
		}
	}

	if len(wrappers) == 0 {
		logger.Debug("filter.service.unchanged")
		return fragment, nil
	}

	failures := 0
	if !skipHandlers && len(handlers) > 0 {
		if err := ctx.Err(); err != nil {
			return "", wrapCanceled(err)
		}
		failures = s.dispatch(ctx, tree, wrappers, handlers, logger)
	}

	var b strings.Builder
	if err := tree.Render(&b); err != nil {
		logging.WithFields(logger, map[string]any{"error": err}).Error("filter.service.render_failed")
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "render fragment").
			WithTextCode(renderFailedCode)
	}

	logging.WithFields(logger, map[string]any{
		"runs":           len(runs),
		"wrappers":       len(wrappers),
		"handler_errors": failures,
	}).Debug("filter.service.completed")
	return b.String(), nil
}

// cacheKey covers everything that changes the output of a call: the active
// delimiters, the rewrite settings, the handled families and the input.
func (s *Service) cacheKey(set *delimiters.Set, handlers map[string]interfaces.FamilyHandler, skipHandlers bool, fragment string) string {
	families := make([]string, 0, len(handlers))
	if !skipHandlers {
		for family := range handlers {
			families = append(families, family)
		}
		sort.Strings(families)
	}
	return cache.Key(
		set.Fingerprint(),
		strings.Join(s.transparentTags, ","),
		s.wrapperTag,
		s.familyAttribute,
		strconv.Itoa(s.maxDepth),
		strings.Join(families, ","),
		fragment,
	)
}

// Registry exposes the delimiter registry backing the service.
func (s *Service) Registry() *delimiters.Registry {
	return s.registry
}

// WrapperTag reports the wrapper element name in use.
func (s *Service) WrapperTag() string {
	return s.wrapperTag
}

var _ interfaces.MathFilter = (*Service)(nil)

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

func wrapCanceled(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryCommand, "filter cancelled").
		WithTextCode(canceledCode)
}
