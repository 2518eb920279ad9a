package markup

import (
	"strings"
	"testing"
)

func TestParseRenderRoundTrip(t *testing.T) {
	cases := []string{
		`plain text`,
		`<p class="lead">Hello <b>world</b></p>`,
		`<div><span>a</span><!-- note --><span>b</span></div>`,
		`<p>x &lt; y &amp;&amp; z</p>`,
		`<pre><code>if a &lt; b {}</code></pre>`,
	}

	for _, input := range cases {
		tree, err := ParseFragment(input)
		if err != nil {
			t.Fatalf("ParseFragment(%q): %v", input, err)
		}
		var b strings.Builder
		if err := tree.Render(&b); err != nil {
			t.Fatalf("Render(%q): %v", input, err)
		}
		if b.String() != input {
			t.Fatalf("round trip mismatch\nwant: %s\ngot:  %s", input, b.String())
		}
	}
}

func TestRenderKeepsScriptTextRaw(t *testing.T) {
	tree, err := ParseFragment(`<script>if (a < b) {}</script>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if got := tree.String(); got != `<script>if (a < b) {}</script>` {
		t.Fatalf("unexpected script rendering: %s", got)
	}
}

func TestAppendFragmentUsesElementContext(t *testing.T) {
	tree := NewTree()
	wrapper := tree.NewElement("math-span")
	tree.AppendChild(tree.Root(), wrapper)

	if err := tree.AppendFragment(wrapper, `<em>x</em>+1`); err != nil {
		t.Fatalf("AppendFragment: %v", err)
	}
	if got := tree.String(); got != `<math-span><em>x</em>+1</math-span>` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestRenderChildrenOfElement(t *testing.T) {
	tree, err := ParseFragment(`<p>a<i>b</i></p>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	var b strings.Builder
	if err := tree.RenderChildren(&b, tree.FirstChild(tree.Root())); err != nil {
		t.Fatalf("RenderChildren: %v", err)
	}
	if b.String() != `a<i>b</i>` {
		t.Fatalf("unexpected inner HTML: %s", b.String())
	}
}
