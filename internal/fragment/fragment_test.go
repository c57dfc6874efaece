package fragment

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/lmscards/internal/sanitize"
)

func TestTextIsEscaped(t *testing.T) {
	n := El("div", []Attr{Class("item-title")}, Text(`<script>alert("x")</script>`))

	assert.Equal(t, `<div class="item-title">&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</div>`, n.HTML())
}

func TestAttributesAreEscaped(t *testing.T) {
	n := El("a", []Attr{A("href", `https://x/?a=1&b="2"`)}, Text("go"))

	assert.Equal(t, `<a href="https://x/?a=1&amp;b=&#34;2&#34;">go</a>`, n.HTML())
}

func TestMarkupEmbedsSanitizedContent(t *testing.T) {
	body := sanitize.HTML(`<p style="color:red">hi<script>x()</script></p>`)
	n := El("div", []Attr{Class("content")}, Markup(body))

	assert.Equal(t, `<div class="content"><p>hi</p></div>`, n.HTML())
	assert.Equal(t, "hi", n.TextContent())
}

func TestMarkupPlaintextBecomesPre(t *testing.T) {
	n := El("div", nil,
		El("div", []Attr{Class("content")}, Markup(sanitize.HTML("a <plaintext>b"))),
		El("div", []Attr{Class("created")}, Text("after")),
	)

	assert.Equal(t, `<div><div class="content">a <pre>b</pre></div><div class="created">after</div></div>`, n.HTML())
}

func TestZeroNodesAreDropped(t *testing.T) {
	n := El("ul", nil,
		When(false, El("li", nil, Text("hidden"))),
		Markup(""),
		Node{},
		El("li", nil, Text("shown")),
	)

	assert.Len(t, n.Children(), 1)
	assert.Equal(t, `<ul><li>shown</li></ul>`, n.HTML())
	assert.True(t, Node{}.IsZero())
	assert.Equal(t, "", Node{}.HTML())
}

func TestGroupRendersWithoutWrapper(t *testing.T) {
	g := Group(El("span", nil, Text("a")), Text(" • "), El("span", nil, Text("b")))

	assert.Equal(t, KindGroup, g.Kind())
	assert.Equal(t, `<span>a</span> • <span>b</span>`, g.HTML())
}

func TestNodesAreImmutable(t *testing.T) {
	attrs := []Attr{Class("a")}
	children := []Node{Text("x")}
	n := El("div", attrs, children...)

	attrs[0] = Class("b")
	children[0] = Text("y")

	assert.True(t, n.HasClass("a"))
	assert.Equal(t, "x", n.TextContent())

	got := n.Children()
	got[0] = Text("z")
	assert.Equal(t, "x", n.TextContent())
}

func TestFindClassAndWalk(t *testing.T) {
	tree := El("ul", []Attr{Class("items")},
		El("li", []Attr{Class("item first")}, Text("1")),
		El("li", []Attr{Class("item")}, El("span", []Attr{Class("item")}, Text("2"))),
	)

	assert.Len(t, tree.FindClass("item"), 3)
	assert.Len(t, tree.FindClass("first"), 1)
	assert.Empty(t, tree.FindClass("missing"))

	var tags []string
	tree.Walk(func(n Node) bool {
		if n.Kind() == KindElement {
			tags = append(tags, n.Tag())
		}
		return n.Tag() != "li"
	})
	assert.Equal(t, []string{"ul", "li", "li"}, tags)
}

func TestNodeIsTemplComponent(t *testing.T) {
	var c templ.Component = El("ha-card", nil, El("div", []Attr{Class("card-content")}, Text("body")))

	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	assert.Equal(t, `<ha-card><div class="card-content">body</div></ha-card>`, buf.String())

	html, err := templ.ToGoHTML(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(html))
}
