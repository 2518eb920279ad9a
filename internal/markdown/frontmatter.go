package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and the Markdown body from source.
// Documents without front matter yield an empty FrontMatter and the whole
// source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles a Document from a path, raw source and
// modification time. BodyHTML is left empty so callers can render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

// math_disabled may be a YAML list or a comma separated string.
type frontMatterEnvelope struct {
	Title        string         `yaml:"title" json:"title" toml:"title"`
	Math         *bool          `yaml:"math" json:"math" toml:"math"`
	MathDisabled any            `yaml:"math_disabled" json:"math_disabled" toml:"math_disabled"`
	Custom       map[string]any `yaml:",inline" json:"-" toml:"-"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	disabled := familyNames(env.MathDisabled)

	raw := make(map[string]any, len(env.Custom)+3)
	for key, value := range env.Custom {
		raw[key] = value
	}
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Math != nil {
		raw["math"] = *env.Math
	}
	if len(disabled) > 0 {
		raw["math_disabled"] = append([]string(nil), disabled...)
	}

	return interfaces.FrontMatter{
		Title:        env.Title,
		Math:         env.Math,
		MathDisabled: disabled,
		Custom:       cloneMap(env.Custom),
		Raw:          raw,
	}
}

func familyNames(value any) []string {
	var out []string
	add := func(name string) {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	switch v := value.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, item := range v {
			add(item)
		}
	}
	return out
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
