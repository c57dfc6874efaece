package cards

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/lmscards/internal/fragment"
)

// itemTitle renders the primary line, linked when link is set. Links go
// through templ's URL sanitizer, so script and data schemes never reach an
// href.
func itemTitle(title, link string) fragment.Node {
	if title == "" {
		return fragment.Node{}
	}

	text := fragment.Text(title)
	if link != "" {
		text = fragment.El("a", []fragment.Attr{
			fragment.A("href", string(templ.URL(link))),
			fragment.A("target", "_blank"),
			fragment.A("rel", "noopener noreferrer"),
		}, text)
	}

	return fragment.El("div", []fragment.Attr{fragment.Class("item-title")}, text)
}

// metaLine joins the non-empty parts in the given order. It renders nothing
// when every part is empty.
func metaLine(parts ...string) fragment.Node {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return fragment.Node{}
	}

	return fragment.El("div", []fragment.Attr{fragment.Class("item-meta")},
		fragment.Text(strings.Join(kept, Delimiter)))
}

func itemBlock(class string, children ...fragment.Node) fragment.Node {
	name := "item"
	if class != "" {
		name += " " + class
	}
	return fragment.El("div", []fragment.Attr{fragment.Class(name)}, children...)
}

func likes(n int) fragment.Node {
	if n <= 0 {
		return fragment.Node{}
	}
	label := strconv.Itoa(n) + " likes"
	if n == 1 {
		label = "1 like"
	}
	return fragment.El("div", []fragment.Attr{fragment.Class("likes")}, fragment.Text(label))
}

func avatar(src string) fragment.Node {
	if src == "" {
		return fragment.Node{}
	}
	return fragment.El("img", []fragment.Attr{
		fragment.Class("avatar"),
		fragment.A("src", string(templ.URL(src))),
		fragment.A("alt", ""),
		fragment.A("loading", "lazy"),
	})
}
