package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func texts(t *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.Text(id))
	}
	return out
}

func TestSplitTextKeepsLeftPartInPlace(t *testing.T) {
	tree := NewTree()
	p := tree.NewElement("p")
	tree.AppendChild(tree.Root(), p)
	leaf := tree.NewText("abc $x")
	tail := tree.NewText("tail")
	tree.AppendChild(p, leaf)
	tree.AppendChild(p, tail)

	right := tree.SplitText(leaf, 4)
	if right == Invalid {
		t.Fatal("expected split to create a right node")
	}

	got := texts(tree, tree.Children(p))
	want := []string{"abc ", "$x", "tail"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if tree.Parent(right) != p {
		t.Fatalf("expected right part to share the parent")
	}
}

func TestSplitTextAtEdgesIsNoOp(t *testing.T) {
	tree := NewTree()
	leaf := tree.NewText("abc")
	tree.AppendChild(tree.Root(), leaf)

	for _, offset := range []int{0, 3, -1, 10} {
		if got := tree.SplitText(leaf, offset); got != Invalid {
			t.Fatalf("SplitText(%d) expected Invalid, got %d", offset, got)
		}
	}
	if tree.Text(leaf) != "abc" {
		t.Fatalf("expected text untouched, got %q", tree.Text(leaf))
	}
}

func TestInsertBeforeAndDetachMaintainLinks(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	a := tree.NewText("a")
	b := tree.NewText("b")
	c := tree.NewText("c")
	tree.AppendChild(root, a)
	tree.AppendChild(root, c)
	tree.InsertBefore(root, b, c)

	if diff := cmp.Diff([]string{"a", "b", "c"}, texts(tree, tree.Children(root))); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	tree.Detach(a)
	if tree.FirstChild(root) != b || tree.PrevSibling(b) != Invalid {
		t.Fatalf("expected b to become first child")
	}
	tree.Detach(c)
	if tree.LastChild(root) != b || tree.NextSibling(b) != Invalid {
		t.Fatalf("expected b to become last child")
	}

	tree.InsertAfter(b, a)
	tree.InsertAfter(b, a)
	if diff := cmp.Diff([]string{"b", "a"}, texts(tree, tree.Children(root))); diff != "" {
		t.Fatalf("order mismatch after InsertAfter (-want +got):\n%s", diff)
	}
}

func TestCommonAncestorAndTextContent(t *testing.T) {
	tree, err := ParseFragment(`<p>one <span>two <b>three</b></span> four</p>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	leaves := tree.TextLeaves(tree.Root())
	if diff := cmp.Diff([]string{"one ", "two ", "three", " four"}, texts(tree, leaves)); diff != "" {
		t.Fatalf("leaves mismatch (-want +got):\n%s", diff)
	}

	p := tree.FirstChild(tree.Root())
	if got := tree.CommonAncestor(leaves[1], leaves[3]); got != p {
		t.Fatalf("expected <p> as common ancestor, got %d", got)
	}
	if !tree.IsAncestor(p, leaves[2]) {
		t.Fatalf("expected <p> to be an ancestor of the bold text")
	}
	if got := tree.TextContent(p); got != "one two three four" {
		t.Fatalf("TextContent = %q", got)
	}
}

func TestCloneShallowCopiesAttributesOnly(t *testing.T) {
	tree, err := ParseFragment(`<span class="x" data-id="1">body</span>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	span := tree.FirstChild(tree.Root())
	clone := tree.CloneShallow(span)

	if tree.FirstChild(clone) != Invalid {
		t.Fatalf("expected clone without children")
	}
	if diff := cmp.Diff(tree.Attrs(span), tree.Attrs(clone)); diff != "" {
		t.Fatalf("attribute mismatch (-want +got):\n%s", diff)
	}
	tree.SetAttr(clone, "class", "y")
	if v, _ := tree.Attr(span, "class"); v != "x" {
		t.Fatalf("expected original attributes untouched, got %q", v)
	}
}
