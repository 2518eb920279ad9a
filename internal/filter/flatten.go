package filter

import (
	"sort"
	"strings"

	"github.com/goliatone/go-mathfilter/internal/markup"
)

// DefaultTransparentTags are the containers whose text joins the surrounding run.
var DefaultTransparentTags = []string{"p", "span", "button", "div"}

// DefaultMaxDepth bounds transparent recursion.
const DefaultMaxDepth = 256

// leafSpan records where a text leaf sits inside its run. Offsets are bytes
// into run.text as it was when the run was built.
type leafSpan struct {
	node  markup.NodeID
	start int
	end   int
}

// run is a maximal stretch of text reachable through transparent elements
// only. Matches never cross from one run into another.
type run struct {
	text   string
	leaves []leafSpan
}

// leafAt returns the indexed leaf whose original span contains offset.
func (r run) leafAt(offset int) (leafSpan, bool) {
	i := sort.Search(len(r.leaves), func(i int) bool { return r.leaves[i].end > offset })
	if i == len(r.leaves) || r.leaves[i].start > offset {
		return leafSpan{}, false
	}
	return r.leaves[i], true
}

type flattener struct {
	tree        *markup.Tree
	transparent map[string]struct{}
	maxDepth    int

	depthExceeded bool
	runs          []run
	text          strings.Builder
	leaves        []leafSpan
}

func newFlattener(tree *markup.Tree, transparent map[string]struct{}, maxDepth int) *flattener {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &flattener{tree: tree, transparent: transparent, maxDepth: maxDepth}
}

// flatten walks the children of id in pre-order and returns its runs in
// document order.
func (f *flattener) flatten(id markup.NodeID) []run {
	f.runs = nil
	f.visit(id, 0)
	f.flush()
	return f.runs
}

func (f *flattener) visit(id markup.NodeID, depth int) {
	for c := f.tree.FirstChild(id); c != markup.Invalid; c = f.tree.NextSibling(c) {
		switch f.tree.Kind(c) {
		case markup.TextNode:
			text := f.tree.Text(c)
			if text == "" {
				continue
			}
			start := f.text.Len()
			f.text.WriteString(text)
			f.leaves = append(f.leaves, leafSpan{node: c, start: start, end: f.text.Len()})
		case markup.ElementNode:
			if f.isTransparent(c) {
				if depth+1 < f.maxDepth {
					f.visit(c, depth+1)
					continue
				}
				f.depthExceeded = true
			}
			f.flush()
		default:
			f.flush()
		}
	}
}

func (f *flattener) isTransparent(id markup.NodeID) bool {
	if f.tree.Namespace(id) != "" {
		return false
	}
	_, ok := f.transparent[f.tree.Tag(id)]
	return ok
}

func (f *flattener) flush() {
	if len(f.leaves) > 0 {
		f.runs = append(f.runs, run{text: f.text.String(), leaves: f.leaves})
	}
	f.text.Reset()
	f.leaves = nil
}

// transparentSet normalises a tag list into a lookup set.
func transparentSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}
