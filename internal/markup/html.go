package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrUnsupportedNode is returned when the parser yields a node kind the
// arena cannot represent.
var ErrUnsupportedNode = errors.New("markup: unsupported node type")

// ParseFragment parses an HTML fragment as body content into a new Tree.
// Top-level nodes become children of the tree root.
func ParseFragment(fragment string) (*Tree, error) {
	t := NewTree()
	if err := t.AppendFragment(t.Root(), fragment); err != nil {
		return nil, err
	}
	return t, nil
}

// AppendFragment parses fragment in the context of parent and appends the
// resulting nodes to parent. Element parents use their own tag as parsing
// context; the root parses as body content.
func (t *Tree) AppendFragment(parent NodeID, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), t.contextNode(parent))
	if err != nil {
		return fmt.Errorf("markup: parse fragment: %w", err)
	}
	for _, n := range nodes {
		id, err := t.importNode(n)
		if err != nil {
			return err
		}
		t.AppendChild(parent, id)
	}
	return nil
}

func (t *Tree) contextNode(parent NodeID) *html.Node {
	tag := "body"
	if t.Kind(parent) == ElementNode && t.Namespace(parent) == "" {
		tag = t.Tag(parent)
	}
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func (t *Tree) importNode(n *html.Node) (NodeID, error) {
	var id NodeID
	switch n.Type {
	case html.TextNode:
		return t.NewText(n.Data), nil
	case html.CommentNode:
		return t.NewComment(n.Data), nil
	case html.DoctypeNode:
		return t.NewDoctype(n.Data), nil
	case html.ElementNode:
		attrs := make([]Attribute, 0, len(n.Attr))
		for _, a := range n.Attr {
			attrs = append(attrs, Attribute{Namespace: a.Namespace, Key: a.Key, Val: a.Val})
		}
		id = t.NewElement(n.Data, attrs...)
		t.nodes[id].namespace = n.Namespace
	default:
		return Invalid, fmt.Errorf("%w: %d", ErrUnsupportedNode, n.Type)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child, err := t.importNode(c)
		if err != nil {
			return Invalid, err
		}
		t.AppendChild(id, child)
	}
	return id, nil
}

// Render serialises the children of the root as HTML.
func (t *Tree) Render(w io.Writer) error {
	return t.RenderChildren(w, t.root)
}

// RenderChildren serialises the children of id as HTML.
func (t *Tree) RenderChildren(w io.Writer, id NodeID) error {
	// html.Render decides raw-text escaping by looking at the parent element,
	// so the exported nodes hang off a detached copy of id.
	holder := t.exportShell(id)
	for c := t.nodes[id].firstChild; c != Invalid; c = t.nodes[c].next {
		holder.AppendChild(t.exportNode(c))
	}
	for c := holder.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("markup: render: %w", err)
		}
	}
	return nil
}

// String renders the fragment, returning "" if serialisation fails.
func (t *Tree) String() string {
	var b strings.Builder
	if err := t.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func (t *Tree) exportShell(id NodeID) *html.Node {
	n := t.nodes[id]
	if n.kind != ElementNode {
		return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	return &html.Node{
		Type:      html.ElementNode,
		Data:      n.data,
		DataAtom:  atom.Lookup([]byte(n.data)),
		Namespace: n.namespace,
	}
}

func (t *Tree) exportNode(id NodeID) *html.Node {
	n := t.nodes[id]
	switch n.kind {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	case DoctypeNode:
		return &html.Node{Type: html.DoctypeNode, Data: n.data}
	}

	out := t.exportShell(id)
	for _, a := range n.attrs {
		out.Attr = append(out.Attr, html.Attribute{Namespace: a.Namespace, Key: a.Key, Val: a.Val})
	}
	for c := n.firstChild; c != Invalid; c = t.nodes[c].next {
		out.AppendChild(t.exportNode(c))
	}
	return out
}
