package delimiters

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

func TestOrder_LongestOpenMarkerFirst(t *testing.T) {
	input := []interfaces.Delimiter{
		{Open: "$", Close: "$", Family: "a"},
		{Open: "$$", Close: "$$", Family: "b"},
		{Open: "[", Close: "]", Family: "c"},
		{Open: "$", Close: "$$", Family: "d"},
	}

	got := Order(input)
	var families []string
	for _, def := range got {
		families = append(families, def.Family)
	}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, families); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if input[0].Family != "a" {
		t.Fatalf("expected input slice untouched")
	}
}

func TestPatternSourceQuotesMarkers(t *testing.T) {
	src := PatternSource([]interfaces.Delimiter{{Open: `\(`, Close: `\)`, Family: "tex"}})
	if src != `(?s)\\\((?:.+?)\\\)` {
		t.Fatalf("unexpected pattern source %s", src)
	}
}

func TestSet_PatternIsLazyAndSpansNewlines(t *testing.T) {
	set, err := NewSet(context.Background(), []interfaces.Delimiter{{Open: "$", Close: "$", Family: "tex"}}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	got := set.Pattern().FindAllString("a $x$ b $y\nz$ c $$", -1)
	if diff := cmp.Diff([]string{"$x$", "$y\nz$"}, got); diff != "" {
		t.Fatalf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_OverlappingFamiliesPreferLongerMarker(t *testing.T) {
	set, err := NewSet(context.Background(), []interfaces.Delimiter{
		{Open: "$", Close: "$", Family: "inline"},
		{Open: "$$", Close: "$$", Family: "display"},
	}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	got := set.Pattern().FindAllString("$$a$$ and $b$", -1)
	if diff := cmp.Diff([]string{"$$a$$", "$b$"}, got); diff != "" {
		t.Fatalf("matches mismatch (-want +got):\n%s", diff)
	}

	def, ok := set.Resolve("$$a$$")
	if !ok || def.Family != "display" {
		t.Fatalf("expected display family, got %+v (%v)", def, ok)
	}
	def, ok = set.Resolve("$b$")
	if !ok || def.Family != "inline" {
		t.Fatalf("expected inline family, got %+v (%v)", def, ok)
	}
}

func TestSet_ResolveRequiresContent(t *testing.T) {
	set, err := NewSet(context.Background(), []interfaces.Delimiter{{Open: `\(`, Close: `\)`, Family: "tex"}}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	for _, text := range []string{`\(\)`, `\(x`, `x\)`, ``} {
		if _, ok := set.Resolve(text); ok {
			t.Fatalf("Resolve(%q) expected no family", text)
		}
	}
	if def, ok := set.Resolve(`\(x\)`); !ok || def.Family != "tex" {
		t.Fatalf("expected tex family, got %+v", def)
	}
}

func TestNewSetRejectsEmptyInput(t *testing.T) {
	if _, err := NewSet(context.Background(), nil, nil); err != ErrNoDelimitersActive {
		t.Fatalf("expected ErrNoDelimitersActive, got %v", err)
	}
}
