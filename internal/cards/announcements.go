package cards

import (
	"github.com/conneroisu/lmscards/internal/fragment"
	"github.com/conneroisu/lmscards/internal/sanitize"
	"github.com/conneroisu/lmscards/internal/schema"
	"github.com/conneroisu/lmscards/internal/types"
	"github.com/conneroisu/lmscards/internal/validation"
)

// AnnouncementsTag is the element name of the announcements card.
const AnnouncementsTag = "schoology-announcements-card"

// NewAnnouncements returns the announcements card. It requires a sensor
// entity whose id mentions "announcements".
func NewAnnouncements(opts ...Option) Card {
	return newBase(base{
		descriptor: types.CardDescriptor{
			Type:             AnnouncementsTag,
			Name:             "Schoology Announcements",
			Description:      "Recent course and group announcements with their comments.",
			Icon:             "mdi:bullhorn",
			Preview:          true,
			DocumentationURL: DocumentationURL,
		},
		policy:       validation.EntityPolicy{Domain: "sensor", Keyword: "announcements"},
		title:        "Announcements",
		icon:         "mdi:bullhorn",
		emptyMessage: "No announcements",
		stubEntity:   "sensor.schoology_announcements",
		grid:         types.GridOptions{Rows: 6, Columns: 12, MinRows: 3, MaxRows: 12},
		body:         announcementItems,
	}, opts)
}

func announcementItems(snap *types.Snapshot) []fragment.Node {
	records := schema.DecodeAnnouncements(snap)
	out := make([]fragment.Node, 0, len(records))
	for _, a := range records {
		out = append(out, announcement(a))
	}
	return out
}

func announcement(a schema.Announcement) fragment.Node {
	return itemBlock("announcement",
		itemTitle(a.Title, ""),
		metaLine(a.Group, a.Date),
		fragment.When(a.Content != "",
			fragment.El("div", []fragment.Attr{fragment.Class("content")},
				fragment.Markup(sanitize.HTML(a.Content)))),
		likes(a.Likes),
		avatar(a.ProfilePicture),
		fragment.When(a.Created != "",
			fragment.El("div", []fragment.Attr{fragment.Class("created")},
				fragment.Text("Posted "+a.Created))),
		comments(a.Comments),
	)
}

// comments renders one level of replies. Comment bodies are shown as text.
func comments(list []schema.Comment) fragment.Node {
	if len(list) == 0 {
		return fragment.Node{}
	}

	blocks := make([]fragment.Node, 0, len(list))
	for _, c := range list {
		blocks = append(blocks, fragment.El("div", []fragment.Attr{fragment.Class("comment")},
			avatar(c.ProfilePicture),
			fragment.When(c.Author != "",
				fragment.El("div", []fragment.Attr{fragment.Class("comment-author")}, fragment.Text(c.Author))),
			fragment.When(c.Content != "",
				fragment.El("div", []fragment.Attr{fragment.Class("comment-content")}, fragment.Text(c.Content))),
			likes(c.Likes),
		))
	}

	return fragment.El("div", []fragment.Attr{fragment.Class("comments")}, blocks...)
}
