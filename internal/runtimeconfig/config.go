package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mathfilter/internal/delimiters"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

var ErrFamiliesRequired = errors.New("mathfilter config: at least one family is required")
var ErrFamilyInvalid = errors.New("mathfilter config: family is invalid")
var ErrFamilyDuplicate = errors.New("mathfilter config: family declared twice")
var ErrWrapperTagInvalid = errors.New("mathfilter config: wrapper tag is invalid")

// ErrWrapperTagTransparent rejects a wrapper the flattener would walk back into.
var ErrWrapperTagTransparent = errors.New("mathfilter config: wrapper tag must not be transparent")
var ErrFamilyAttributeInvalid = errors.New("mathfilter config: family attribute is invalid")
var ErrMaxDepthInvalid = errors.New("mathfilter config: max depth must be positive")
var ErrCacheCapacityInvalid = errors.New("mathfilter config: cache capacity must be zero or positive")
var ErrLoggingProviderRequired = errors.New("mathfilter config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("mathfilter config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("mathfilter config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("mathfilter config: logging format is invalid")

// Config aggregates delimiter definitions, rewrite settings and adapter
// bindings. Fields use plain types so hosts can build it from any source.
type Config struct {
	Families         []FamilyConfig `yaml:"families" json:"families"`
	DisabledFamilies FamilyList     `yaml:"disabled_families" json:"disabled_families"`
	TransparentTags  []string       `yaml:"transparent_tags" json:"transparent_tags"`
	WrapperTag       string         `yaml:"wrapper_tag" json:"wrapper_tag"`
	FamilyAttribute  string         `yaml:"family_attribute" json:"family_attribute"`
	MaxDepth         int            `yaml:"max_depth" json:"max_depth"`
	Handlers         HandlersConfig `yaml:"handlers" json:"handlers"`
	Cache            CacheConfig    `yaml:"cache" json:"cache"`
	Markdown         MarkdownConfig `yaml:"markdown" json:"markdown"`
	Logging          LoggingConfig  `yaml:"logging" json:"logging"`
}

// FamilyConfig declares a delimiter family and its marker pairs.
type FamilyConfig struct {
	Name       string            `yaml:"name" json:"name"`
	Delimiters []DelimiterConfig `yaml:"delimiters" json:"delimiters"`
}

// DelimiterConfig is one open/close marker pair.
type DelimiterConfig struct {
	Open  string `yaml:"open" json:"open"`
	Close string `yaml:"close" json:"close"`
}

// FamilyList is a list of family names. In YAML it may also be written as a
// single comma separated string.
type FamilyList []string

// UnmarshalYAML accepts either a sequence or a comma separated scalar.
func (l *FamilyList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = SplitFamilies(value.Value)
		return nil
	}
	var items []string
	if err := value.Decode(&items); err != nil {
		return err
	}
	*l = items
	return nil
}

// SplitFamilies parses a comma separated family list, dropping blanks.
func SplitFamilies(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HandlersConfig toggles the built-in family handlers.
type HandlersConfig struct {
	ClassNames  bool   `yaml:"class_names" json:"class_names"`
	ClassPrefix string `yaml:"class_prefix" json:"class_prefix"`
}

// CacheConfig captures result and pattern cache behaviour.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Capacity        int           `yaml:"capacity" json:"capacity"`
	TTL             time.Duration `yaml:"ttl" json:"ttl"`
	PatternCapacity int           `yaml:"pattern_capacity" json:"pattern_capacity"`
}

// MarkdownConfig configures document discovery and goldmark rendering.
type MarkdownConfig struct {
	ContentDir  string   `yaml:"content_dir" json:"content_dir"`
	Pattern     string   `yaml:"pattern" json:"pattern"`
	Recursive   bool     `yaml:"recursive" json:"recursive"`
	Extensions  []string `yaml:"extensions" json:"extensions"`
	HardWraps   bool     `yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode    bool     `yaml:"safe_mode" json:"safe_mode"`
	FrontMatter bool     `yaml:"front_matter" json:"front_matter"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" json:"provider"`
	Level     string   `yaml:"level" json:"level"`
	Format    string   `yaml:"format" json:"format"`
	AddSource bool     `yaml:"add_source" json:"add_source"`
	Focus     []string `yaml:"focus" json:"focus"`
}

// DefaultConfig returns the stock TeX and AsciiMath families, the latter
// disabled, with the default rewrite settings.
func DefaultConfig() Config {
	return Config{
		Families: []FamilyConfig{
			{
				Name: "tex",
				Delimiters: []DelimiterConfig{
					{Open: "$$", Close: "$$"},
					{Open: `\[`, Close: `\]`},
					{Open: `\(`, Close: `\)`},
					{Open: "$", Close: "$"},
				},
			},
			{
				Name: "asciimath",
				Delimiters: []DelimiterConfig{
					{Open: "`", Close: "`"},
				},
			},
		},
		DisabledFamilies: FamilyList{"asciimath"},
		TransparentTags:  []string{"p", "span", "button", "div"},
		WrapperTag:       "math-span",
		FamilyAttribute:  "family",
		MaxDepth:         256,
		Handlers: HandlersConfig{
			ClassPrefix: "local-math-",
		},
		Cache: CacheConfig{
			Enabled:         false,
			Capacity:        1024,
			TTL:             10 * time.Minute,
			PatternCapacity: 256,
		},
		Markdown: MarkdownConfig{
			ContentDir:  ".",
			Pattern:     "*.md",
			Recursive:   true,
			Extensions:  []string{"gfm"},
			FrontMatter: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs field and consistency checks.
func (cfg Config) Validate() error {
	if len(cfg.Families) == 0 {
		return ErrFamiliesRequired
	}
	seen := map[string]struct{}{}
	for i, family := range cfg.Families {
		if err := family.Validate(); err != nil {
			return fmt.Errorf("%w: families[%d]: %v", ErrFamilyInvalid, i, err)
		}
		name := delimiters.NormalizeFamily(family.Name)
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", ErrFamilyDuplicate, name)
		}
		seen[name] = struct{}{}
	}

	wrapper := normalizeTag(cfg.WrapperTag)
	if !isTagName(wrapper) {
		return fmt.Errorf("%w: %q", ErrWrapperTagInvalid, cfg.WrapperTag)
	}
	for _, tag := range cfg.TransparentTags {
		if normalizeTag(tag) == wrapper {
			return fmt.Errorf("%w: %s", ErrWrapperTagTransparent, wrapper)
		}
	}
	if !isTagName(strings.ToLower(strings.TrimSpace(cfg.FamilyAttribute))) {
		return fmt.Errorf("%w: %q", ErrFamilyAttributeInvalid, cfg.FamilyAttribute)
	}
	if cfg.MaxDepth <= 0 {
		return ErrMaxDepthInvalid
	}
	if cfg.Cache.Capacity < 0 || cfg.Cache.PatternCapacity < 0 {
		return ErrCacheCapacityInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// Validate checks the family name and each marker pair.
func (f FamilyConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("name is required")),
		validation.Field(&f.Delimiters,
			validation.Required.Error("at least one delimiter is required"),
			validation.By(func(value any) error {
				pairs, _ := value.([]DelimiterConfig)
				for _, pair := range pairs {
					def := interfaces.Delimiter{
						Open:   pair.Open,
						Close:  pair.Close,
						Family: delimiters.NormalizeFamily(f.Name),
					}
					if err := delimiters.Validate(def); err != nil {
						return validation.NewError("mathfilter.config.delimiter_invalid", err.Error())
					}
				}
				return nil
			}),
		),
	)
}

// Pairs returns the marker pairs in the form the registry accepts.
func (f FamilyConfig) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(f.Delimiters))
	for _, d := range f.Delimiters {
		pairs = append(pairs, [2]string{d.Open, d.Close})
	}
	return pairs
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func isTagName(tag string) bool {
	if tag == "" || tag[0] < 'a' || tag[0] > 'z' {
		return false
	}
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == ':':
		default:
			return false
		}
	}
	return true
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
