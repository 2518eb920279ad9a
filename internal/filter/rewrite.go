package filter

import (
	"fmt"

	"github.com/goliatone/go-mathfilter/internal/markup"
)

// boundary is a position between two children of parent. An Invalid before
// means the end of parent's children.
type boundary struct {
	parent markup.NodeID
	before markup.NodeID
}

type rewriter struct {
	tree       *markup.Tree
	wrapperTag string
}

// wrap isolates m in a new wrapper element and returns it. Matches of one
// run must be wrapped right to left: a split keeps the left part under the
// original leaf ID, so offsets left of the last rewrite stay valid.
func (r *rewriter) wrap(rn run, m Match) (markup.NodeID, error) {
	endLeaf, endOffset, err := r.position(rn, m.End-1, m.End)
	if err != nil {
		return markup.Invalid, err
	}
	startLeaf, startOffset, err := r.position(rn, m.Start, m.Start)
	if err != nil {
		return markup.Invalid, err
	}

	common := r.tree.CommonAncestor(startLeaf, endLeaf)
	if common == markup.Invalid {
		return markup.Invalid, fmt.Errorf("%w: leaves %d and %d share no ancestor", ErrSplitBoundary, startLeaf, endLeaf)
	}

	end := r.lift(r.splitLeaf(endLeaf, endOffset), common)
	start := r.lift(r.splitLeaf(startLeaf, startOffset), common)
	if start.before == markup.Invalid || start.before == end.before {
		return markup.Invalid, fmt.Errorf("%w: empty range [%d,%d)", ErrSplitBoundary, m.Start, m.End)
	}

	var moved []markup.NodeID
	for c := start.before; c != end.before; c = r.tree.NextSibling(c) {
		if c == markup.Invalid {
			return markup.Invalid, fmt.Errorf("%w: end boundary precedes start", ErrSplitBoundary)
		}
		moved = append(moved, c)
	}

	wrapper := r.tree.NewElement(r.wrapperTag)
	r.tree.InsertBefore(common, wrapper, start.before)
	for _, c := range moved {
		r.tree.AppendChild(wrapper, c)
	}
	return wrapper, nil
}

// position maps the run offset locate onto its indexed leaf and returns the
// split offset of cut relative to that leaf.
func (r *rewriter) position(rn run, locate, cut int) (markup.NodeID, int, error) {
	span, ok := rn.leafAt(locate)
	if !ok {
		return markup.Invalid, 0, fmt.Errorf("%w: no leaf at offset %d", ErrSplitBoundary, locate)
	}
	if r.tree.Parent(span.node) == markup.Invalid {
		return markup.Invalid, 0, fmt.Errorf("%w: leaf %d detached", ErrSplitBoundary, span.node)
	}
	offset := cut - span.start
	if offset < 0 || offset > len(r.tree.Text(span.node)) {
		return markup.Invalid, 0, fmt.Errorf("%w: offset %d outside leaf %d", ErrSplitBoundary, offset, span.node)
	}
	return span.node, offset, nil
}

// splitLeaf returns the boundary at offset inside leaf, splitting the leaf
// when the offset falls strictly inside it.
func (r *rewriter) splitLeaf(leaf markup.NodeID, offset int) boundary {
	parent := r.tree.Parent(leaf)
	switch {
	case offset == 0:
		return boundary{parent: parent, before: leaf}
	case offset >= len(r.tree.Text(leaf)):
		return boundary{parent: parent, before: r.tree.NextSibling(leaf)}
	default:
		return boundary{parent: parent, before: r.tree.SplitText(leaf, offset)}
	}
}

// lift moves b up until its parent is target. A boundary on the edge of a
// container moves next to the container; one strictly inside splits it,
// the original keeping the left children and a shallow clone the rest.
func (r *rewriter) lift(b boundary, target markup.NodeID) boundary {
	for b.parent != target && b.parent != markup.Invalid {
		container := b.parent
		grand := r.tree.Parent(container)
		switch b.before {
		case r.tree.FirstChild(container):
			b = boundary{parent: grand, before: container}
		case markup.Invalid:
			b = boundary{parent: grand, before: r.tree.NextSibling(container)}
		default:
			clone := r.tree.CloneShallow(container)
			r.tree.InsertAfter(container, clone)
			for c := b.before; c != markup.Invalid; {
				next := r.tree.NextSibling(c)
				r.tree.AppendChild(clone, c)
				c = next
			}
			b = boundary{parent: grand, before: clone}
		}
	}
	return b
}
