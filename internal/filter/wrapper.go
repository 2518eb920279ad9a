package filter

import (
	"github.com/goliatone/go-mathfilter/internal/markup"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// wrapped is a wrapper produced by one filter call. Family is empty when
// the wrapper could not be resolved.
type wrapped struct {
	node   markup.NodeID
	family string
}

// wrapperNode exposes a live wrapper element to family handlers.
type wrapperNode struct {
	tree   *markup.Tree
	node   markup.NodeID
	family string
}

var _ interfaces.WrapperNode = (*wrapperNode)(nil)

func (w *wrapperNode) Family() string { return w.family }

func (w *wrapperNode) Text() string { return w.tree.TextContent(w.node) }

func (w *wrapperNode) Attribute(key string) (string, bool) { return w.tree.Attr(w.node, key) }

func (w *wrapperNode) SetAttribute(key, value string) { w.tree.SetAttr(w.node, key, value) }

func (w *wrapperNode) SetText(text string) {
	w.clear()
	if text != "" {
		w.tree.AppendChild(w.node, w.tree.NewText(text))
	}
}

// SetHTML parses fragment in the wrapper's context. On error the wrapper
// keeps its previous children.
func (w *wrapperNode) SetHTML(fragment string) error {
	scratch := w.tree.NewElement(w.tree.Tag(w.node))
	if err := w.tree.AppendFragment(scratch, fragment); err != nil {
		return err
	}
	w.clear()
	for _, c := range w.tree.Children(scratch) {
		w.tree.AppendChild(w.node, c)
	}
	return nil
}

func (w *wrapperNode) clear() {
	for _, c := range w.tree.Children(w.node) {
		w.tree.Detach(c)
	}
}
