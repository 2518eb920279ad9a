package filter

import (
	"github.com/goliatone/go-mathfilter/internal/delimiters"
	"github.com/goliatone/go-mathfilter/internal/markup"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

type resolver struct {
	tree        *markup.Tree
	set         *delimiters.Set
	attribute   string
	transparent map[string]struct{}
}

// resolve tags wrapper with the family whose markers enclose its text and
// strips those markers. The markers may be spread over several leaves;
// leaves emptied by stripping are detached together with any transparent
// container inside the wrapper they leave empty.
func (r *resolver) resolve(wrapper markup.NodeID) (interfaces.Delimiter, error) {
	def, ok := r.set.Resolve(r.tree.TextContent(wrapper))
	if !ok {
		return interfaces.Delimiter{}, ErrUnresolvedFamily
	}

	r.tree.SetAttr(wrapper, r.attribute, def.Family)
	r.stripLeading(wrapper, len(def.Open))
	r.stripTrailing(wrapper, len(def.Close))
	return def, nil
}

func (r *resolver) stripLeading(wrapper markup.NodeID, n int) {
	for _, leaf := range r.tree.TextLeaves(wrapper) {
		if n == 0 {
			return
		}
		text := r.tree.Text(leaf)
		if len(text) <= n {
			n -= len(text)
			r.detach(wrapper, leaf)
			continue
		}
		r.tree.SetText(leaf, text[n:])
		n = 0
	}
}

func (r *resolver) stripTrailing(wrapper markup.NodeID, n int) {
	leaves := r.tree.TextLeaves(wrapper)
	for i := len(leaves) - 1; i >= 0 && n > 0; i-- {
		text := r.tree.Text(leaves[i])
		if len(text) <= n {
			n -= len(text)
			r.detach(wrapper, leaves[i])
			continue
		}
		r.tree.SetText(leaves[i], text[:len(text)-n])
		n = 0
	}
}

func (r *resolver) detach(wrapper, leaf markup.NodeID) {
	parent := r.tree.Parent(leaf)
	r.tree.Detach(leaf)
	for parent != markup.Invalid && parent != wrapper && r.tree.FirstChild(parent) == markup.Invalid {
		if _, ok := r.transparent[r.tree.Tag(parent)]; !ok {
			return
		}
		next := r.tree.Parent(parent)
		r.tree.Detach(parent)
		parent = next
	}
}
