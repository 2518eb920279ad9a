package interfaces

import (
	"context"
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService renders Markdown documents and runs the math filter over
// the resulting HTML.
type MarkdownService interface {
	Load(ctx context.Context, path string) (*Document, error)
	LoadDirectory(ctx context.Context, dir string) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
}

// Document represents a Markdown file with parsed metadata and content.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
}

// FrontMatter models the metadata recognised by the Markdown pipeline. Math
// toggles filtering for the whole document (nil means enabled) and
// MathDisabled lists families switched off for this document only.
type FrontMatter struct {
	Title        string         `yaml:"title" json:"title"`
	Math         *bool          `yaml:"math" json:"math"`
	MathDisabled []string       `yaml:"math_disabled" json:"math_disabled"`
	Custom       map[string]any `yaml:",inline" json:"custom"`
	Raw          map[string]any `yaml:"-" json:"raw"`
}

// MathEnabled reports whether the document opted into math filtering.
func (f FrontMatter) MathEnabled() bool {
	return f.Math == nil || *f.Math
}
