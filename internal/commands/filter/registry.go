package filtercmd

import (
	"context"
	"errors"
	"io"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mathfilter/internal/commands"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

var (
	// ErrFilterRequired is returned when registration receives no filter.
	ErrFilterRequired = errors.New("filter command registration: filter is nil")
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers produced by RegisterFilterCommands. The
// Markdown handlers are nil when no Markdown service was supplied.
type HandlerSet struct {
	FilterFile      *FilterFileHandler
	RenderMarkdown  *RenderMarkdownHandler
	RenderDirectory *RenderDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	out                 io.Writer
	filterHandlerOpts   []commands.HandlerOption[FilterFileCommand]
	markdownHandlerOpts []commands.HandlerOption[RenderMarkdownCommand]
	directoryOpts       []commands.HandlerOption[RenderDirectoryCommand]
}

// WithOutput sets the writer used by commands without an output path.
func WithOutput(out io.Writer) Option {
	return func(cfg *options) {
		cfg.out = out
	}
}

// WithFilterHandlerOptions forwards options to the FilterFileHandler constructor.
func WithFilterHandlerOptions(opts ...commands.HandlerOption[FilterFileCommand]) Option {
	return func(cfg *options) {
		cfg.filterHandlerOpts = append(cfg.filterHandlerOpts, opts...)
	}
}

// WithMarkdownHandlerOptions forwards options to the RenderMarkdownHandler constructor.
func WithMarkdownHandlerOptions(opts ...commands.HandlerOption[RenderMarkdownCommand]) Option {
	return func(cfg *options) {
		cfg.markdownHandlerOpts = append(cfg.markdownHandlerOpts, opts...)
	}
}

// WithDirectoryHandlerOptions forwards options to the RenderDirectoryHandler constructor.
func WithDirectoryHandlerOptions(opts ...commands.HandlerOption[RenderDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.directoryOpts = append(cfg.directoryOpts, opts...)
	}
}

// RegisterFilterCommands builds the filter command handlers and registers them with the provided
// registry. markdown may be nil, in which case only the file filter handler is built.
func RegisterFilterCommands(reg CommandRegistry, filter interfaces.MathFilter, markdown interfaces.MarkdownService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if filter == nil {
		return nil, ErrFilterRequired
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		FilterFile: NewFilterFileHandler(filter, cfg.out, commands.CommandLogger(provider, "filter", filterFileOperation), cfg.filterHandlerOpts...),
	}
	handlers := []any{set.FilterFile}

	if markdown != nil {
		set.RenderMarkdown = NewRenderMarkdownHandler(markdown, cfg.out,
			commands.CommandLogger(provider, "markdown", renderMarkdownOperation), cfg.markdownHandlerOpts...)
		set.RenderDirectory = NewRenderDirectoryHandler(markdown,
			commands.CommandLogger(provider, "markdown", renderDirectoryOperation), cfg.directoryOpts...)
		handlers = append(handlers, set.RenderMarkdown, set.RenderDirectory)
	}

	if reg != nil {
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterRenderCron wires the directory handler into a cron registrar using the supplied
// command configuration and message payload. The handler is executed with a background context.
func RegisterRenderCron(reg CronRegistrar, handler *RenderDirectoryHandler, cfg command.HandlerConfig, msg RenderDirectoryCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
