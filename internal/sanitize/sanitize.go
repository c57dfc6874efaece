// Package sanitize cleans untrusted HTML fragments (announcement bodies and
// other third-party feed content) before they are placed into a card.
//
// The sanitizer is denylist based: it removes script, style, iframe, object,
// embed, link and meta elements at any depth and strips the inline color and
// background-color declarations from every remaining element, so feed content
// follows the host theme. Everything else, including event-handler
// attributes such as onclick, is passed through unchanged.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/lmscards/internal/validation"
)

// SafeHTML is markup that has been through HTML. It is the only form of
// untrusted content the fragment builder accepts as markup.
type SafeHTML string

// String returns the markup.
func (s SafeHTML) String() string {
	return string(s)
}

// maxPasses bounds the search for a serialization fixpoint.
const maxPasses = 4

var deniedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Iframe: true,
	atom.Object: true,
	atom.Embed:  true,
	atom.Link:   true,
	atom.Meta:   true,
}

var strippedProperties = map[string]bool{
	"color":            true,
	"background-color": true,
}

// HTML sanitizes input. It never fails: input that cannot be brought to a
// stable form is returned as escaped text. HTML(HTML(x)) == HTML(x).
func HTML(input string) SafeHTML {
	out, ok := pass(input)
	if !ok {
		return textFallback(input)
	}

	for i := 0; i < maxPasses; i++ {
		next, ok := pass(out)
		if !ok {
			return textFallback(input)
		}
		if next == out {
			return SafeHTML(out)
		}
		out = next
	}

	return textFallback(input)
}

// pass runs one parse, clean and serialize round.
func pass(input string) (string, bool) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}

	nodes, err := html.ParseFragment(strings.NewReader(input), context)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	for _, n := range nodes {
		if isDenied(n) {
			continue
		}
		clean(n)
		if err := html.Render(&b, n); err != nil {
			return "", false
		}
	}

	return b.String(), true
}

// clean removes denied descendants of n and strips color styling from n and
// everything below it.
func clean(n *html.Node) {
	if n.Type == html.ElementNode {
		n.Attr = stripColorStyles(n.Attr)
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isDenied(c) {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
}

func isDenied(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.DataAtom != 0 {
		return deniedElements[n.DataAtom]
	}
	return deniedElements[atom.Lookup([]byte(strings.ToLower(n.Data)))]
}

// stripColorStyles drops color and background-color declarations from the
// style attribute. A style attribute left empty is removed.
func stripColorStyles(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Namespace != "" || !strings.EqualFold(a.Key, "style") {
			out = append(out, a)
			continue
		}

		var kept []string
		for _, decl := range strings.Split(a.Val, ";") {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			property := decl
			if i := strings.IndexByte(decl, ':'); i >= 0 {
				property = decl[:i]
			}
			if strippedProperties[strings.ToLower(strings.TrimSpace(property))] {
				continue
			}
			kept = append(kept, decl)
		}

		if len(kept) == 0 {
			continue
		}
		a.Val = strings.Join(kept, "; ")
		out = append(out, a)
	}
	return out
}

// textFallback renders input as plain escaped text. Control characters are
// removed first so the result is itself a fixpoint of pass.
func textFallback(input string) SafeHTML {
	text := validation.SanitizeInput(input)
	text = strings.ReplaceAll(text, "\r", "")
	return SafeHTML(html.EscapeString(text))
}
