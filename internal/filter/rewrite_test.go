package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-mathfilter/internal/delimiters"
	"github.com/goliatone/go-mathfilter/internal/markup"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

func flattenFragment(t *testing.T, fragment string) (*markup.Tree, []run) {
	t.Helper()
	tree, err := markup.ParseFragment(fragment)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	return tree, newFlattener(tree, transparentSet(DefaultTransparentTags), 0).flatten(tree.Root())
}

func TestRewriter_WrapKeepsLeftLeafID(t *testing.T) {
	tree, runs := flattenFragment(t, `<p>ab$x$cd</p>`)
	leaf := runs[0].leaves[0].node

	rw := &rewriter{tree: tree, wrapperTag: "math-span"}
	wrapper, err := rw.wrap(runs[0], Match{Start: 2, End: 5, Text: "$x$"})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	if tree.Text(leaf) != "ab" {
		t.Fatalf("expected left part to keep the original leaf, got %q", tree.Text(leaf))
	}
	if tree.NextSibling(leaf) != wrapper {
		t.Fatalf("expected wrapper right after the left part")
	}
	if tree.TextContent(wrapper) != "$x$" {
		t.Fatalf("unexpected wrapper text %q", tree.TextContent(wrapper))
	}
	if got := tree.String(); got != `<p>ab<math-span>$x$</math-span>cd</p>` {
		t.Fatalf("unexpected tree: %s", got)
	}
}

func TestRewriter_RightToLeftKeepsOffsetsValid(t *testing.T) {
	tree, runs := flattenFragment(t, `<p>$a$ $b$</p>`)
	rw := &rewriter{tree: tree, wrapperTag: "w"}

	if _, err := rw.wrap(runs[0], Match{Start: 4, End: 7}); err != nil {
		t.Fatalf("wrap right: %v", err)
	}
	if _, err := rw.wrap(runs[0], Match{Start: 0, End: 3}); err != nil {
		t.Fatalf("wrap left: %v", err)
	}
	if got := tree.String(); got != `<p><w>$a$</w> <w>$b$</w></p>` {
		t.Fatalf("unexpected tree: %s", got)
	}
}

func TestRewriter_StaleLeafIsSplitBoundary(t *testing.T) {
	tree, runs := flattenFragment(t, `<p>$a$</p>`)
	tree.Detach(runs[0].leaves[0].node)

	rw := &rewriter{tree: tree, wrapperTag: "w"}
	if _, err := rw.wrap(runs[0], Match{Start: 0, End: 3}); !errors.Is(err, ErrSplitBoundary) {
		t.Fatalf("expected ErrSplitBoundary, got %v", err)
	}

	tree, runs = flattenFragment(t, `<p>$a$</p>`)
	tree.SetText(runs[0].leaves[0].node, "$")
	rw = &rewriter{tree: tree, wrapperTag: "w"}
	if _, err := rw.wrap(runs[0], Match{Start: 0, End: 3}); !errors.Is(err, ErrSplitBoundary) {
		t.Fatalf("expected ErrSplitBoundary for shrunk leaf, got %v", err)
	}
	if _, err := rw.wrap(runs[0], Match{Start: 5, End: 9}); !errors.Is(err, ErrSplitBoundary) {
		t.Fatalf("expected ErrSplitBoundary past the run, got %v", err)
	}
}

func TestResolver_UnresolvedWrapperStaysUntagged(t *testing.T) {
	set, err := delimiters.NewSet(context.Background(), []interfaces.Delimiter{{Open: "$", Close: "$", Family: "tex"}}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	tree := markup.NewTree()
	wrapper := tree.NewElement("math-span")
	tree.AppendChild(tree.Root(), wrapper)
	tree.AppendChild(wrapper, tree.NewText("$$"))

	res := &resolver{tree: tree, set: set, attribute: "family"}
	if _, err := res.resolve(wrapper); !errors.Is(err, ErrUnresolvedFamily) {
		t.Fatalf("expected ErrUnresolvedFamily, got %v", err)
	}
	if _, ok := tree.Attr(wrapper, "family"); ok {
		t.Fatalf("expected wrapper untagged")
	}
	if tree.TextContent(wrapper) != "$$" {
		t.Fatalf("expected markers kept, got %q", tree.TextContent(wrapper))
	}
}

func TestResolver_StripsMarkersAcrossLeaves(t *testing.T) {
	set, err := delimiters.NewSet(context.Background(), []interfaces.Delimiter{{Open: `\(`, Close: `\)`, Family: "tex"}}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	tree, err := markup.ParseFragment(`<w>\<i>(x\</i>)</w>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	wrapper := tree.FirstChild(tree.Root())

	res := &resolver{tree: tree, set: set, attribute: "family"}
	def, err := res.resolve(wrapper)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if def.Family != "tex" {
		t.Fatalf("unexpected family %q", def.Family)
	}
	if got := tree.String(); got != `<w family="tex"><i>x</i></w>` {
		t.Fatalf("unexpected tree: %s", got)
	}
}

func TestResolver_DetachesEmptiedTransparentContainers(t *testing.T) {
	set, err := delimiters.NewSet(context.Background(), []interfaces.Delimiter{{Open: "$", Close: "$", Family: "tex"}}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	tree, err := markup.ParseFragment(`<w><span><b>$</b></span>x<i>$</i></w>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	wrapper := tree.FirstChild(tree.Root())

	res := &resolver{tree: tree, set: set, attribute: "family", transparent: transparentSet([]string{"span", "b"})}
	if _, err := res.resolve(wrapper); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := tree.String(); got != `<w family="tex">x<i></i></w>` {
		t.Fatalf("expected emptied transparent containers removed and opaque ones kept, got %s", got)
	}
}

func TestRewriter_MatchAcrossAdjacentTextLeaves(t *testing.T) {
	set, err := delimiters.NewSet(context.Background(), []interfaces.Delimiter{{Open: "$", Close: "$", Family: "tex"}}, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	tree := markup.NewTree()
	p := tree.NewElement("p")
	tree.AppendChild(tree.Root(), p)
	tree.AppendChild(p, tree.NewText("abc $x"))
	tree.AppendChild(p, tree.NewText("y$ def"))

	runs := newFlattener(tree, transparentSet(DefaultTransparentTags), 0).flatten(tree.Root())
	if len(runs) != 1 || runs[0].text != "abc $xy$ def" {
		t.Fatalf("expected one run over both leaves, got %+v", runs)
	}
	matches, err := locate(set.Pattern(), runs[0].text)
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one match, got %v (%v)", matches, err)
	}

	rw := &rewriter{tree: tree, wrapperTag: "w"}
	wrapper, err := rw.wrap(runs[0], matches[0])
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	res := &resolver{tree: tree, set: set, attribute: "family"}
	if _, err := res.resolve(wrapper); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := tree.String(); got != `<p>abc <w family="tex">xy</w> def</p>` {
		t.Fatalf("unexpected tree: %s", got)
	}
}
