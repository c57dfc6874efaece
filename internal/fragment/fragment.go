// Package fragment is an immutable builder for the HTML trees cards render.
//
// Card chrome (headers, item blocks, meta lines) is assembled from El and
// Text nodes, which are always escaped on output. Untrusted feed markup can
// only enter a tree through Markup, which takes a sanitize.SafeHTML, so the
// builder never conflates trusted structure with third-party content.
//
// Node implements templ.Component, so a rendered card can be embedded
// directly in any templ page.
package fragment

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/lmscards/internal/sanitize"
)

// Kind identifies what a Node holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindElement
	KindText
	KindMarkup
	KindGroup
)

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// A builds an Attr.
func A(key, val string) Attr {
	return Attr{Key: key, Val: val}
}

// Class is shorthand for A("class", name).
func Class(name string) Attr {
	return Attr{Key: "class", Val: name}
}

// Node is an immutable fragment tree. The zero value renders nothing.
type Node struct {
	kind     Kind
	tag      string
	attrs    []Attr
	children []Node
	text     string
	markup   sanitize.SafeHTML
}

var _ templ.Component = Node{}

// El builds an element. Zero-value children are dropped.
func El(tag string, attrs []Attr, children ...Node) Node {
	n := Node{kind: KindElement, tag: strings.ToLower(tag)}
	if len(attrs) > 0 {
		n.attrs = append([]Attr(nil), attrs...)
	}
	n.children = compact(children)
	return n
}

// Text builds an escaped text node.
func Text(s string) Node {
	return Node{kind: KindText, text: s}
}

// Markup embeds sanitized markup.
func Markup(h sanitize.SafeHTML) Node {
	if h == "" {
		return Node{}
	}
	return Node{kind: KindMarkup, markup: h}
}

// Group is a sequence of nodes without a wrapping element.
func Group(children ...Node) Node {
	return Node{kind: KindGroup, children: compact(children)}
}

// When returns n if cond holds and the empty node otherwise.
func When(cond bool, n Node) Node {
	if !cond {
		return Node{}
	}
	return n
}

func compact(nodes []Node) []Node {
	var out []Node
	for _, c := range nodes {
		if c.kind != KindEmpty {
			out = append(out, c)
		}
	}
	return out
}

// Kind reports the node kind.
func (n Node) Kind() Kind { return n.kind }

// Tag returns the element name, or "" for non-element nodes.
func (n Node) Tag() string { return n.tag }

// IsZero reports whether n renders nothing.
func (n Node) IsZero() bool { return n.kind == KindEmpty }

// Attr returns the value of the attribute key.
func (n Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether the class attribute contains name.
func (n Node) HasClass(name string) bool {
	classes, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// Children returns a copy of the child list.
func (n Node) Children() []Node {
	return append([]Node(nil), n.children...)
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n Node) Walk(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// FindClass returns every node in the tree carrying the class name.
func (n Node) FindClass(name string) []Node {
	var found []Node
	n.Walk(func(c Node) bool {
		if c.HasClass(name) {
			found = append(found, c)
		}
		return true
	})
	return found
}

// TextContent returns the concatenated text of the tree, markup included.
func (n Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(c Node) bool {
		switch c.kind {
		case KindText:
			b.WriteString(c.text)
		case KindMarkup:
			for _, hn := range parseMarkup(c.markup) {
				writeText(&b, hn)
			}
		}
		return true
	})
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

// HTML serializes the tree.
func (n Node) HTML() string {
	var b strings.Builder
	// strings.Builder never fails
	_ = n.Render(context.Background(), &b)
	return b.String()
}

// String implements fmt.Stringer.
func (n Node) String() string {
	return n.HTML()
}

// Render writes the tree to w.
func (n Node) Render(ctx context.Context, w io.Writer) error {
	for _, hn := range n.toHTML() {
		if err := html.Render(w, hn); err != nil {
			return err
		}
	}
	return nil
}

// toHTML converts the tree into x/net/html nodes.
func (n Node) toHTML() []*html.Node {
	switch n.kind {
	case KindText:
		return []*html.Node{{Type: html.TextNode, Data: n.text}}
	case KindMarkup:
		return parseMarkup(n.markup)
	case KindGroup:
		var out []*html.Node
		for _, c := range n.children {
			out = append(out, c.toHTML()...)
		}
		return out
	case KindElement:
		el := &html.Node{
			Type:     html.ElementNode,
			Data:     n.tag,
			DataAtom: atom.Lookup([]byte(n.tag)),
		}
		for _, a := range n.attrs {
			el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		for _, c := range n.children {
			for _, hc := range c.toHTML() {
				el.AppendChild(hc)
			}
		}
		return []*html.Node{el}
	default:
		return nil
	}
}

func parseMarkup(h sanitize.SafeHTML) []*html.Node {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(string(h)), context)
	if err != nil {
		return []*html.Node{{Type: html.TextNode, Data: string(h)}}
	}
	for _, n := range nodes {
		neutralizePlaintext(n)
	}
	return nodes
}

// neutralizePlaintext renames plaintext elements to pre. A plaintext element
// has no end tag, so serializing one ends the document at that point.
func neutralizePlaintext(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Plaintext {
		n.Data = "pre"
		n.DataAtom = atom.Pre
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		neutralizePlaintext(c)
	}
}
