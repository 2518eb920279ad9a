package delimiters

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// Set is an immutable, ordered snapshot of active delimiters together with
// the alternation pattern that matches any of them. It is safe to share.
//
// Order is the tie-break between overlapping families: longer open markers
// first, then longer close markers, then registration order. The pattern
// lists its alternatives in that order, so for two candidates starting at
// the same offset the earlier one wins, and Resolve checks in the same order.
type Set struct {
	delimiters []interfaces.Delimiter
	pattern    *regexp.Regexp
}

// NewSet orders delimiters and compiles their alternation through cache.
// A nil cache compiles directly.
func NewSet(ctx context.Context, delimiters []interfaces.Delimiter, cache *PatternCache) (*Set, error) {
	if len(delimiters) == 0 {
		return nil, ErrNoDelimitersActive
	}

	ordered := Order(delimiters)
	source := PatternSource(ordered)

	var (
		pattern *regexp.Regexp
		err     error
	)
	if cache != nil {
		pattern, err = cache.Compile(ctx, source)
	} else {
		pattern, err = regexp.Compile(source)
	}
	if err != nil {
		return nil, err
	}

	return &Set{delimiters: ordered, pattern: pattern}, nil
}

// Order returns a copy of delimiters sorted by descending open marker length,
// then descending close marker length. Equal lengths keep their input order.
func Order(delimiters []interfaces.Delimiter) []interfaces.Delimiter {
	ordered := append([]interfaces.Delimiter(nil), delimiters...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i].Open) != len(ordered[j].Open) {
			return len(ordered[i].Open) > len(ordered[j].Open)
		}
		return len(ordered[i].Close) > len(ordered[j].Close)
	})
	return ordered
}

// PatternSource builds the alternation for already ordered delimiters. Each
// alternative is the quoted open marker, a lazy run of at least one
// character (newlines included) and the quoted close marker.
func PatternSource(ordered []interfaces.Delimiter) string {
	parts := make([]string, 0, len(ordered))
	for _, def := range ordered {
		parts = append(parts, regexp.QuoteMeta(def.Open)+`(?:.+?)`+regexp.QuoteMeta(def.Close))
	}
	return `(?s)` + strings.Join(parts, "|")
}

// Pattern returns the compiled alternation.
func (s *Set) Pattern() *regexp.Regexp { return s.pattern }

// Delimiters returns the active delimiters in tie-break order.
func (s *Set) Delimiters() []interfaces.Delimiter {
	return append([]interfaces.Delimiter(nil), s.delimiters...)
}

// Families lists the distinct active families in tie-break order.
func (s *Set) Families() []string {
	seen := make(map[string]struct{}, len(s.delimiters))
	var out []string
	for _, def := range s.delimiters {
		if _, ok := seen[def.Family]; ok {
			continue
		}
		seen[def.Family] = struct{}{}
		out = append(out, def.Family)
	}
	return out
}

// Fingerprint identifies the active configuration; equal sets share it.
func (s *Set) Fingerprint() string { return s.pattern.String() }

// Resolve returns the first delimiter, in tie-break order, whose open marker
// prefixes text and whose close marker suffixes it with at least one
// character between them.
func (s *Set) Resolve(text string) (interfaces.Delimiter, bool) {
	for _, def := range s.delimiters {
		if len(text) <= len(def.Open)+len(def.Close) {
			continue
		}
		if strings.HasPrefix(text, def.Open) && strings.HasSuffix(text, def.Close) {
			return def, true
		}
	}
	return interfaces.Delimiter{}, false
}
