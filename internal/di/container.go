package di

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-mathfilter/internal/cache"
	filtercmd "github.com/goliatone/go-mathfilter/internal/commands/filter"
	"github.com/goliatone/go-mathfilter/internal/delimiters"
	"github.com/goliatone/go-mathfilter/internal/filter"
	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/internal/logging/console"
	"github.com/goliatone/go-mathfilter/internal/logging/gologger"
	"github.com/goliatone/go-mathfilter/internal/markdown"
	"github.com/goliatone/go-mathfilter/internal/runtimeconfig"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// Container wires the filter services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider  interfaces.LoggerProvider
	metrics         interfaces.FilterMetrics
	cacheProvider   interfaces.CacheProvider
	handlers        map[string]interfaces.FamilyHandler
	markdownParser  interfaces.MarkdownParser
	commandRegistry filtercmd.CommandRegistry
	commandOutput   io.Writer
	disableMarkdown bool

	patterns *delimiters.PatternCache
	registry *delimiters.Registry
	filter   *filter.Service
	markdown *markdown.Service
	commands *filtercmd.HandlerSet
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithMetrics attaches a metrics recorder to the filter service.
func WithMetrics(metrics interfaces.FilterMetrics) Option {
	return func(c *Container) {
		c.metrics = metrics
	}
}

// WithCacheProvider replaces the in-memory result cache. Setting a provider
// enables result caching regardless of cfg.Cache.Enabled.
func WithCacheProvider(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cacheProvider = provider
	}
}

// WithFamilyHandler registers a post-processing handler for family.
func WithFamilyHandler(family string, handler interfaces.FamilyHandler) Option {
	return func(c *Container) {
		if c.handlers == nil {
			c.handlers = map[string]interfaces.FamilyHandler{}
		}
		c.handlers[family] = handler
	}
}

// WithMarkdownParser overrides the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.markdownParser = parser
	}
}

// WithoutMarkdown skips building the Markdown service, for hosts that only
// filter HTML and have no content directory.
func WithoutMarkdown() Option {
	return func(c *Container) {
		c.disableMarkdown = true
	}
}

// WithCommandRegistry registers the command handlers with reg while wiring.
func WithCommandRegistry(reg filtercmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCommandOutput sets where commands without an output path write.
func WithCommandOutput(out io.Writer) Option {
	return func(c *Container) {
		c.commandOutput = out
	}
}

// NewContainer validates cfg and builds every service it describes.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureRegistry(); err != nil {
		return nil, err
	}
	c.configureFilter()
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("configure logger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureRegistry() error {
	c.patterns = delimiters.NewPatternCache(c.Config.Cache.PatternCapacity)
	c.registry = delimiters.NewRegistry(
		delimiters.WithLogger(logging.RegistryLogger(c.loggerProvider)),
		delimiters.WithPatternCache(c.patterns),
	)
	for _, family := range c.Config.Families {
		if err := c.registry.Register(family.Name, family.Pairs()...); err != nil {
			return fmt.Errorf("register family %s: %w", family.Name, err)
		}
	}
	return nil
}

func (c *Container) configureFilter() {
	handlers := map[string]interfaces.FamilyHandler{}
	if c.Config.Handlers.ClassNames {
		classes := filter.ClassHandler(c.Config.Handlers.ClassPrefix)
		for _, family := range c.registry.Families() {
			handlers[family] = classes
		}
	}
	for family, handler := range c.handlers {
		handlers[family] = handler
	}

	opts := []filter.ServiceOption{
		filter.WithLogger(logging.FilterLogger(c.loggerProvider)),
		filter.WithHandlers(handlers),
		filter.WithWrapperTag(c.Config.WrapperTag),
		filter.WithFamilyAttribute(c.Config.FamilyAttribute),
		filter.WithMaxDepth(c.Config.MaxDepth),
		filter.WithDisabledFamilies(c.Config.DisabledFamilies...),
	}
	if len(c.Config.TransparentTags) > 0 {
		opts = append(opts, filter.WithTransparentTags(c.Config.TransparentTags...))
	}
	if c.metrics != nil {
		opts = append(opts, filter.WithMetrics(c.metrics))
	}

	provider := c.cacheProvider
	if provider == nil && c.Config.Cache.Enabled {
		provider = cache.NewMemory(c.Config.Cache.Capacity, c.Config.Cache.TTL)
	}
	if provider != nil {
		opts = append(opts, filter.WithCache(provider, c.Config.Cache.TTL))
		c.cacheProvider = provider
	}

	c.filter = filter.NewService(c.registry, opts...)
}

func (c *Container) configureMarkdown() error {
	if c.disableMarkdown {
		return nil
	}

	mdCfg := c.Config.Markdown
	opts := []markdown.ServiceOption{
		markdown.WithFilter(c.filter),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	}
	if c.markdownParser != nil {
		opts = append(opts, markdown.WithParser(c.markdownParser))
	}

	svc, err := markdown.NewService(markdown.Config{
		BasePath:  mdCfg.ContentDir,
		Pattern:   mdCfg.Pattern,
		Recursive: mdCfg.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: mdCfg.Extensions,
			HardWraps:  mdCfg.HardWraps,
			SafeMode:   mdCfg.SafeMode,
		},
		FrontMatter: mdCfg.FrontMatter,
	}, opts...)
	if err != nil {
		return fmt.Errorf("configure markdown service: %w", err)
	}
	c.markdown = svc
	return nil
}

func (c *Container) configureCommands() error {
	var md interfaces.MarkdownService
	if c.markdown != nil {
		md = c.markdown
	}
	set, err := filtercmd.RegisterFilterCommands(c.commandRegistry, c.filter, md, c.loggerProvider,
		filtercmd.WithOutput(c.commandOutput),
	)
	if err != nil {
		return fmt.Errorf("configure commands: %w", err)
	}
	c.commands = set
	return nil
}

// LoggerProvider returns the provider every service logs through.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Registry returns the delimiter registry built from the configured families.
func (c *Container) Registry() *delimiters.Registry {
	return c.registry
}

// FilterService returns the configured filter.
func (c *Container) FilterService() *filter.Service {
	return c.filter
}

// MarkdownService returns the Markdown service, or nil when disabled.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	if c.markdown == nil {
		return nil
	}
	return c.markdown
}

// CacheProvider returns the result cache, or nil when caching is off.
func (c *Container) CacheProvider() interfaces.CacheProvider {
	return c.cacheProvider
}

// Commands returns the command handlers bound to the services.
func (c *Container) Commands() *filtercmd.HandlerSet {
	return c.commands
}
