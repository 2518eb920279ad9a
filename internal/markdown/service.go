package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// ErrNilDocument is returned when RenderDocument receives no document.
var ErrNilDocument = errors.New("markdown service: document is nil")

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
	// FrontMatter enables the per-document math toggles.
	FrontMatter bool
}

// Service implements interfaces.MarkdownService: goldmark renders the body
// and the math filter isolates delimited spans in the resulting HTML.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	filter interfaces.MathFilter
	loader *Loader
	logger interfaces.Logger
}

// ServiceOption customises the Markdown service.
type ServiceOption func(*Service)

// WithParser overrides the Markdown parser.
func WithParser(parser interfaces.MarkdownParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithFilter attaches the math filter run over rendered HTML.
func WithFilter(filter interfaces.MathFilter) ServiceOption {
	return func(s *Service) {
		s.filter = filter
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Markdown service rooted at cfg.BasePath. Without a
// parser option a goldmark parser with cfg.Parser defaults is used.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:    cfg,
		parser: NewGoldmarkParser(cfg.Parser),
		logger: logging.NoOp(),
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  cfg.BasePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Load reads and renders a single document relative to the base path.
func (s *Service) Load(ctx context.Context, path string) (*interfaces.Document, error) {
	doc, err := s.loader.LoadFile(ctx, normalisePath(path))
	if err != nil {
		return nil, err
	}
	if _, err := s.RenderDocument(ctx, doc, interfaces.ParseOptions{}); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadDirectory reads and renders every matching document under dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.Document, error) {
	docs, err := s.loader.LoadDirectory(ctx, normalisePath(dir))
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if _, err := s.RenderDocument(ctx, doc, interfaces.ParseOptions{}); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// Render converts Markdown into HTML and filters it with default options.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	html, err := s.toHTML(ctx, markdown, opts)
	if err != nil {
		return nil, err
	}
	return s.applyFilter(ctx, html, "", interfaces.FilterOptions{})
}

// RenderDocument renders the document body, honours its math front matter
// and stores the result in doc.BodyHTML.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	html, err := s.toHTML(ctx, doc.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}

	filterOpts := interfaces.FilterOptions{}
	if s.cfg.FrontMatter {
		if !doc.FrontMatter.MathEnabled() {
			logging.WithFilterRun(s.logger, "", doc.FilePath).Debug("markdown.service.math_disabled")
			doc.BodyHTML = html
			return html, nil
		}
		filterOpts.DisabledFamilies = append(filterOpts.DisabledFamilies, doc.FrontMatter.MathDisabled...)
	}

	out, err := s.applyFilter(ctx, html, doc.FilePath, filterOpts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = out
	return out, nil
}

func (s *Service) toHTML(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

func (s *Service) applyFilter(ctx context.Context, html []byte, document string, opts interfaces.FilterOptions) ([]byte, error) {
	if s.filter == nil {
		return html, nil
	}
	out, err := s.filter.Filter(ctx, string(html), opts)
	if err != nil {
		logging.WithFields(logging.WithFilterRun(s.logger, "", document), map[string]any{
			"error": err,
		}).Error("markdown.service.filter_failed")
		return nil, err
	}
	return []byte(out), nil
}

func normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	return path
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}

var _ interfaces.MarkdownService = (*Service)(nil)
