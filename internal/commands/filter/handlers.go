package filtercmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mathfilter/internal/commands"
	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

const (
	filterFileOperation      = "filter.file"
	renderMarkdownOperation  = "markdown.render"
	renderDirectoryOperation = "markdown.render_directory"
)

var (
	_ command.Commander[FilterFileCommand]      = (*FilterFileHandler)(nil)
	_ command.Commander[RenderMarkdownCommand]  = (*RenderMarkdownHandler)(nil)
	_ command.Commander[RenderDirectoryCommand] = (*RenderDirectoryHandler)(nil)
)

// FilterFileHandler reads an HTML file, filters it and writes the result.
type FilterFileHandler struct {
	inner *commands.Handler[FilterFileCommand]
}

// NewFilterFileHandler creates a handler bound to the supplied filter. out
// receives results for commands without an Output path.
func NewFilterFileHandler(filter interfaces.MathFilter, out io.Writer, logger interfaces.Logger, opts ...commands.HandlerOption[FilterFileCommand]) *FilterFileHandler {
	out = ensureWriter(out)

	exec := func(ctx context.Context, msg FilterFileCommand) error {
		input, err := os.ReadFile(msg.Input)
		if err != nil {
			return fmt.Errorf("filter file: read %s: %w", msg.Input, err)
		}

		result, err := filter.Filter(ctx, string(input), interfaces.FilterOptions{
			DisabledFamilies: msg.DisabledFamilies,
			SkipHandlers:     msg.SkipHandlers,
		})
		if err != nil {
			return err
		}
		if err := writeResult(out, msg.Output, []byte(result)); err != nil {
			return err
		}
		commands.RecordDocument(ctx, commands.DocumentResult{
			Output:   msg.Output,
			Bytes:    len(result),
			Filtered: true,
			Changed:  result != string(input),
		})
		return nil
	}

	baseOpts := []commands.HandlerOption[FilterFileCommand]{
		commands.WithLogger[FilterFileCommand](logger),
		commands.WithOperation[FilterFileCommand](filterFileOperation),
		commands.WithMessageFields(func(msg FilterFileCommand) map[string]any {
			fields := map[string]any{"input": msg.Input}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			if len(msg.DisabledFamilies) > 0 {
				fields["disabled_families"] = strings.Join(msg.DisabledFamilies, ",")
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[FilterFileCommand](logger)),
	}
	baseOpts = append(baseOpts, opts...)

	return &FilterFileHandler{inner: commands.NewHandler(exec, baseOpts...)}
}

// Execute satisfies command.Commander[FilterFileCommand].
func (h *FilterFileHandler) Execute(ctx context.Context, msg FilterFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderMarkdownHandler renders a single Markdown document through the
// Markdown service, which applies the filter.
type RenderMarkdownHandler struct {
	inner *commands.Handler[RenderMarkdownCommand]
}

// NewRenderMarkdownHandler creates a handler bound to the supplied Markdown service.
func NewRenderMarkdownHandler(service interfaces.MarkdownService, out io.Writer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderMarkdownCommand]) *RenderMarkdownHandler {
	out = ensureWriter(out)

	exec := func(ctx context.Context, msg RenderMarkdownCommand) error {
		doc, err := service.Load(ctx, msg.Path)
		if err != nil {
			return err
		}
		if err := writeResult(out, msg.Output, doc.BodyHTML); err != nil {
			return err
		}
		commands.RecordDocument(ctx, commands.DocumentResult{
			Output:   msg.Output,
			Bytes:    len(doc.BodyHTML),
			Filtered: doc.FrontMatter.MathEnabled(),
		})
		return nil
	}

	baseOpts := []commands.HandlerOption[RenderMarkdownCommand]{
		commands.WithLogger[RenderMarkdownCommand](logger),
		commands.WithOperation[RenderMarkdownCommand](renderMarkdownOperation),
		commands.WithMessageFields(func(msg RenderMarkdownCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderMarkdownCommand](logger)),
	}
	baseOpts = append(baseOpts, opts...)

	return &RenderMarkdownHandler{inner: commands.NewHandler(exec, baseOpts...)}
}

// Execute satisfies command.Commander[RenderMarkdownCommand].
func (h *RenderMarkdownHandler) Execute(ctx context.Context, msg RenderMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderDirectoryHandler renders a Markdown tree into an output directory,
// mirroring the source layout with .html extensions.
type RenderDirectoryHandler struct {
	inner *commands.Handler[RenderDirectoryCommand]
}

// NewRenderDirectoryHandler creates a handler bound to the supplied Markdown service.
func NewRenderDirectoryHandler(service interfaces.MarkdownService, logger interfaces.Logger, opts ...commands.HandlerOption[RenderDirectoryCommand]) *RenderDirectoryHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderDirectoryCommand) error {
		docs, err := service.LoadDirectory(ctx, msg.Directory)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			target := filepath.Join(msg.OutputDir, htmlName(doc.FilePath))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("render directory: create %s: %w", filepath.Dir(target), err)
			}
			if err := os.WriteFile(target, doc.BodyHTML, 0o644); err != nil {
				return fmt.Errorf("render directory: write %s: %w", target, err)
			}
			commands.RecordDocument(ctx, commands.DocumentResult{
				Output:   target,
				Bytes:    len(doc.BodyHTML),
				Filtered: doc.FrontMatter.MathEnabled(),
			})
			logging.WithFilterRun(logger, "", doc.FilePath).Debug("markdown.render_directory.written", "output", target)
		}
		return nil
	}

	baseOpts := []commands.HandlerOption[RenderDirectoryCommand]{
		commands.WithLogger[RenderDirectoryCommand](logger),
		commands.WithOperation[RenderDirectoryCommand](renderDirectoryOperation),
		commands.WithMessageFields(func(msg RenderDirectoryCommand) map[string]any {
			return map[string]any{
				"directory":  msg.Directory,
				"output_dir": msg.OutputDir,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDirectoryCommand](logger)),
	}
	baseOpts = append(baseOpts, opts...)

	return &RenderDirectoryHandler{inner: commands.NewHandler(exec, baseOpts...)}
}

// Execute satisfies command.Commander[RenderDirectoryCommand].
func (h *RenderDirectoryHandler) Execute(ctx context.Context, msg RenderDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

func writeResult(out io.Writer, path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		_, err := out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write result: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}

func htmlName(path string) string {
	return strings.TrimSuffix(filepath.FromSlash(path), filepath.Ext(path)) + ".html"
}

func ensureWriter(out io.Writer) io.Writer {
	if out == nil {
		return os.Stdout
	}
	return out
}
