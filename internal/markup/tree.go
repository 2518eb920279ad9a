package markup

import (
	"strings"
)

// NodeID addresses a node inside a Tree. IDs stay valid for the lifetime of
// the tree; detached nodes keep their slot and are never reused.
type NodeID int32

// Invalid is the zero link: no parent, no sibling, no child.
const Invalid NodeID = -1

// Kind enumerates the node kinds stored in a Tree.
type Kind uint8

const (
	RootNode Kind = iota
	TextNode
	ElementNode
	CommentNode
	DoctypeNode
)

func (k Kind) String() string {
	switch k {
	case RootNode:
		return "root"
	case TextNode:
		return "text"
	case ElementNode:
		return "element"
	case CommentNode:
		return "comment"
	case DoctypeNode:
		return "doctype"
	default:
		return "unknown"
	}
}

// Attribute is an element attribute. Namespace is empty for plain HTML.
type Attribute struct {
	Namespace string
	Key       string
	Val       string
}

type node struct {
	kind      Kind
	data      string
	namespace string
	attrs     []Attribute

	parent     NodeID
	firstChild NodeID
	lastChild  NodeID
	prev       NodeID
	next       NodeID
}

// Tree is an arena-backed markup tree. All links are NodeIDs into the nodes
// slice, so splitting, inserting and reparenting only rewrite a few links
// and never invalidate IDs held by callers.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes []node
	root  NodeID
}

// NewTree returns a tree holding only its root.
func NewTree() *Tree {
	t := &Tree{}
	t.root = t.alloc(node{kind: RootNode})
	return t
}

func (t *Tree) alloc(n node) NodeID {
	n.parent, n.firstChild, n.lastChild, n.prev, n.next = Invalid, Invalid, Invalid, Invalid, Invalid
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Root returns the synthetic root that owns the fragment's top-level nodes.
func (t *Tree) Root() NodeID { return t.root }

// Len reports how many nodes were ever allocated, detached ones included.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether id addresses a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) Kind(id NodeID) Kind          { return t.nodes[id].kind }
func (t *Tree) Parent(id NodeID) NodeID      { return t.nodes[id].parent }
func (t *Tree) FirstChild(id NodeID) NodeID  { return t.nodes[id].firstChild }
func (t *Tree) LastChild(id NodeID) NodeID   { return t.nodes[id].lastChild }
func (t *Tree) NextSibling(id NodeID) NodeID { return t.nodes[id].next }
func (t *Tree) PrevSibling(id NodeID) NodeID { return t.nodes[id].prev }

// Tag returns the tag name of an element, or "" for other kinds.
func (t *Tree) Tag(id NodeID) string {
	if t.nodes[id].kind != ElementNode {
		return ""
	}
	return t.nodes[id].data
}

// Namespace returns the element namespace ("" for HTML, "svg", "math").
func (t *Tree) Namespace(id NodeID) string { return t.nodes[id].namespace }

// Data returns the raw payload: text content, tag name, comment or doctype.
func (t *Tree) Data(id NodeID) string { return t.nodes[id].data }

// Text returns the content of a text node, or "" for other kinds.
func (t *Tree) Text(id NodeID) string {
	if t.nodes[id].kind != TextNode {
		return ""
	}
	return t.nodes[id].data
}

// SetText replaces the content of a text node. It is a no-op for other kinds.
func (t *Tree) SetText(id NodeID, text string) {
	if t.nodes[id].kind == TextNode {
		t.nodes[id].data = text
	}
}

// NewText allocates a detached text node.
func (t *Tree) NewText(text string) NodeID {
	return t.alloc(node{kind: TextNode, data: text})
}

// NewElement allocates a detached element. Tag names are stored as given;
// HTML tags are expected in lower case.
func (t *Tree) NewElement(tag string, attrs ...Attribute) NodeID {
	return t.alloc(node{
		kind:  ElementNode,
		data:  tag,
		attrs: append([]Attribute(nil), attrs...),
	})
}

// NewComment allocates a detached comment node.
func (t *Tree) NewComment(text string) NodeID {
	return t.alloc(node{kind: CommentNode, data: text})
}

// NewDoctype allocates a detached doctype node.
func (t *Tree) NewDoctype(name string) NodeID {
	return t.alloc(node{kind: DoctypeNode, data: name})
}

// CloneShallow allocates a detached copy of id without children.
func (t *Tree) CloneShallow(id NodeID) NodeID {
	src := t.nodes[id]
	return t.alloc(node{
		kind:      src.kind,
		data:      src.data,
		namespace: src.namespace,
		attrs:     append([]Attribute(nil), src.attrs...),
	})
}

// Attrs returns a copy of the element attributes in source order.
func (t *Tree) Attrs(id NodeID) []Attribute {
	return append([]Attribute(nil), t.nodes[id].attrs...)
}

// Attr looks up a plain (non-namespaced) attribute.
func (t *Tree) Attr(id NodeID, key string) (string, bool) {
	for _, attr := range t.nodes[id].attrs {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces a plain attribute, keeping attribute order stable.
func (t *Tree) SetAttr(id NodeID, key, value string) {
	n := &t.nodes[id]
	if n.kind != ElementNode {
		return
	}
	for i := range n.attrs {
		if n.attrs[i].Namespace == "" && n.attrs[i].Key == key {
			n.attrs[i].Val = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Key: key, Val: value})
}

// Children returns the direct children of id in order.
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.nodes[id].firstChild; c != Invalid; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// Detach unlinks id from its parent and siblings. Its subtree stays intact.
func (t *Tree) Detach(id NodeID) {
	n := &t.nodes[id]
	if n.parent == Invalid {
		return
	}
	parent := &t.nodes[n.parent]
	if n.prev != Invalid {
		t.nodes[n.prev].next = n.next
	} else {
		parent.firstChild = n.next
	}
	if n.next != Invalid {
		t.nodes[n.next].prev = n.prev
	} else {
		parent.lastChild = n.prev
	}
	n.parent, n.prev, n.next = Invalid, Invalid, Invalid
}

// AppendChild moves child to the end of parent's children.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.InsertBefore(parent, child, Invalid)
}

// InsertBefore moves child into parent right before ref. A ref of Invalid
// appends. ref must be a child of parent.
func (t *Tree) InsertBefore(parent, child, ref NodeID) {
	if child == ref {
		return
	}
	t.Detach(child)

	c := &t.nodes[child]
	c.parent = parent
	p := &t.nodes[parent]

	if ref == Invalid {
		c.prev = p.lastChild
		if p.lastChild != Invalid {
			t.nodes[p.lastChild].next = child
		} else {
			p.firstChild = child
		}
		p.lastChild = child
		return
	}

	r := &t.nodes[ref]
	c.prev = r.prev
	c.next = ref
	if r.prev != Invalid {
		t.nodes[r.prev].next = child
	} else {
		p.firstChild = child
	}
	r.prev = child
}

// InsertAfter moves child into ref's parent right after ref.
func (t *Tree) InsertAfter(ref, child NodeID) {
	t.InsertBefore(t.nodes[ref].parent, child, t.nodes[ref].next)
}

// SplitText cuts a text node at byte offset. The original node keeps
// text[:offset] and a new sibling holding text[offset:] is inserted right
// after it and returned. When offset is at either edge nothing is split and
// Invalid is returned, so a split never creates an empty leaf.
func (t *Tree) SplitText(id NodeID, offset int) NodeID {
	n := &t.nodes[id]
	if n.kind != TextNode || offset <= 0 || offset >= len(n.data) {
		return Invalid
	}
	right := n.data[offset:]
	n.data = n.data[:offset]
	created := t.NewText(right)
	if t.nodes[id].parent != Invalid {
		t.InsertAfter(id, created)
	}
	return created
}

// TextContent concatenates every descendant text node of id in document order.
func (t *Tree) TextContent(id NodeID) string {
	if t.nodes[id].kind == TextNode {
		return t.nodes[id].data
	}
	var b strings.Builder
	t.Walk(id, func(n NodeID) bool {
		if t.nodes[n].kind == TextNode {
			b.WriteString(t.nodes[n].data)
		}
		return true
	})
	return b.String()
}

// TextLeaves returns the descendant text nodes of id in document order.
func (t *Tree) TextLeaves(id NodeID) []NodeID {
	var out []NodeID
	t.Walk(id, func(n NodeID) bool {
		if t.nodes[n].kind == TextNode {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Walk visits the descendants of id in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	for c := t.nodes[id].firstChild; c != Invalid; {
		next := t.nodes[c].next
		if fn(c) {
			t.Walk(c, fn)
		}
		c = next
	}
}

// IsAncestor reports whether a is a proper ancestor of b.
func (t *Tree) IsAncestor(a, b NodeID) bool {
	for p := t.nodes[b].parent; p != Invalid; p = t.nodes[p].parent {
		if p == a {
			return true
		}
	}
	return false
}

// CommonAncestor returns the lowest node that is an ancestor of both a and
// b, or Invalid when they live in different trees.
func (t *Tree) CommonAncestor(a, b NodeID) NodeID {
	seen := map[NodeID]struct{}{}
	for p := t.nodes[a].parent; p != Invalid; p = t.nodes[p].parent {
		seen[p] = struct{}{}
	}
	for p := t.nodes[b].parent; p != Invalid; p = t.nodes[p].parent {
		if _, ok := seen[p]; ok {
			return p
		}
	}
	return Invalid
}
