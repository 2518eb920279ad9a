// Command mathfilter isolates delimited math in HTML fragments and Markdown
// documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-mathfilter"
	filtercmd "github.com/goliatone/go-mathfilter/internal/commands/filter"
	"github.com/goliatone/go-mathfilter/internal/logging/console"
)

const version = "0.1.0"

// Globals are flags shared by every subcommand.
type Globals struct {
	Config     string `name:"config" short:"c" help:"YAML or JSON configuration file" type:"existingfile"`
	ContentDir string `name:"content-dir" help:"Base directory for Markdown documents (overrides config)" type:"path"`
	LogLevel   string `name:"log-level" help:"Log level written to stderr" default:"warn"`

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// CLI defines the command-line interface for mathfilter.
type CLI struct {
	Globals

	Filter   FilterCmd   `cmd:"" help:"Filter an HTML fragment file or stdin"`
	Markdown MarkdownCmd `cmd:"" help:"Render Markdown and filter the resulting HTML"`
	Families FamiliesCmd `cmd:"" help:"List configured delimiter families"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// FilterCmd filters one HTML fragment.
type FilterCmd struct {
	Input        string   `arg:"" optional:"" help:"HTML file to filter; '-' or empty reads stdin" default:"-"`
	Output       string   `short:"o" help:"Write the result to this file instead of stdout" type:"path"`
	Disable      []string `help:"Families to disable for this run (comma separated)"`
	SkipHandlers bool     `name:"skip-handlers" help:"Do not run family handlers"`
}

func (c *FilterCmd) Run(g *Globals) error {
	module, err := g.module(mathfilter.WithoutMarkdown())
	if err != nil {
		return err
	}
	ctx := context.Background()

	if c.Input == "-" || strings.TrimSpace(c.Input) == "" {
		out, err := module.FilterReader(ctx, g.stdin, mathfilter.FilterOptions{
			DisabledFamilies: c.Disable,
			SkipHandlers:     c.SkipHandlers,
		})
		if err != nil {
			return err
		}
		if c.Output != "" {
			return os.WriteFile(c.Output, []byte(out), 0o644)
		}
		_, err = io.WriteString(g.stdout, out)
		return err
	}

	return module.Commands().FilterFile.Execute(ctx, filtercmd.FilterFileCommand{
		Input:            c.Input,
		Output:           c.Output,
		DisabledFamilies: c.Disable,
		SkipHandlers:     c.SkipHandlers,
	})
}

// MarkdownCmd renders one document or, with --out-dir, a whole directory.
type MarkdownCmd struct {
	Path   string `arg:"" help:"Document or directory, relative to the content directory"`
	Output string `short:"o" help:"Write a single document to this file instead of stdout" type:"path"`
	OutDir string `name:"out-dir" help:"Render every document under Path into this directory" type:"path"`
}

func (c *MarkdownCmd) Run(g *Globals) error {
	module, err := g.module()
	if err != nil {
		return err
	}
	ctx := context.Background()
	handlers := module.Commands()

	if c.OutDir != "" {
		return handlers.RenderDirectory.Execute(ctx, filtercmd.RenderDirectoryCommand{
			Directory: c.Path,
			OutputDir: c.OutDir,
		})
	}
	return handlers.RenderMarkdown.Execute(ctx, filtercmd.RenderMarkdownCommand{
		Path:   c.Path,
		Output: c.Output,
	})
}

// FamiliesCmd prints the delimiter catalogue.
type FamiliesCmd struct{}

func (c *FamiliesCmd) Run(g *Globals) error {
	module, err := g.module(mathfilter.WithoutMarkdown())
	if err != nil {
		return err
	}

	disabled := map[string]bool{}
	for _, name := range module.Config().DisabledFamilies {
		disabled[strings.ToLower(strings.TrimSpace(name))] = true
	}

	tw := tabwriter.NewWriter(g.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FAMILY\tOPEN\tCLOSE\tSTATUS")
	for _, def := range module.Delimiters() {
		status := "enabled"
		if disabled[def.Family] {
			status = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Family, def.Open, def.Close, status)
	}
	return tw.Flush()
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintf(g.stdout, "mathfilter %s\n", version)
	return err
}

func (g *Globals) module(opts ...mathfilter.Option) (*mathfilter.Module, error) {
	cfg := mathfilter.DefaultConfig()
	if g.Config != "" {
		loaded, err := mathfilter.LoadConfig(g.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if g.ContentDir != "" {
		cfg.Markdown.ContentDir = g.ContentDir
	}

	opts = append(opts, mathfilter.WithCommandOutput(g.stdout))
	if strings.EqualFold(strings.TrimSpace(cfg.Logging.Provider), "console") || cfg.Logging.Provider == "" {
		level, ok := console.ParseLevel(g.LogLevel)
		if !ok {
			return nil, fmt.Errorf("unknown log level %q", g.LogLevel)
		}
		opts = append(opts, mathfilter.WithLoggerProvider(console.NewProvider(console.Options{
			Writer:   g.stderr,
			MinLevel: &level,
		})))
	} else {
		cfg.Logging.Level = g.LogLevel
	}
	return mathfilter.New(cfg, opts...)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := CLI{}
	cli.stdin, cli.stdout, cli.stderr = stdin, stdout, stderr

	exited := false
	parser, err := kong.New(&cli,
		kong.Name("mathfilter"),
		kong.Description("Isolate delimited math in HTML fragments and Markdown documents"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if exited {
		return nil
	}
	if err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "mathfilter:", err)
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
