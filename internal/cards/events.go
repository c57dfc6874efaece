package cards

import (
	"github.com/conneroisu/lmscards/internal/fragment"
	"github.com/conneroisu/lmscards/internal/schema"
	"github.com/conneroisu/lmscards/internal/types"
	"github.com/conneroisu/lmscards/internal/validation"
)

// UpcomingTag is the element name of the upcoming events card.
const UpcomingTag = "schoology-upcoming-card"

// NewUpcoming returns the upcoming events card. It requires a sensor entity
// whose id mentions "upcoming".
func NewUpcoming(opts ...Option) Card {
	return newBase(base{
		descriptor: types.CardDescriptor{
			Type:             UpcomingTag,
			Name:             "Schoology Upcoming Events",
			Description:      "Calendar events coming up in your courses and groups.",
			Icon:             "mdi:calendar",
			Preview:          true,
			DocumentationURL: DocumentationURL,
		},
		policy:       validation.EntityPolicy{Domain: "sensor", Keyword: "upcoming"},
		title:        "Upcoming Events",
		icon:         "mdi:calendar",
		emptyMessage: "No upcoming events",
		stubEntity:   "sensor.schoology_upcoming_events",
		grid:         types.GridOptions{Rows: 4, Columns: 12, MinRows: 2, MaxRows: 8},
		body:         eventItems,
	}, opts)
}

func eventItems(snap *types.Snapshot) []fragment.Node {
	records := schema.DecodeEvents(snap)
	out := make([]fragment.Node, 0, len(records))
	for _, e := range records {
		out = append(out, itemBlock("event",
			itemTitle(e.Title, e.Link),
			metaLine(e.Group, e.Date, e.Time),
		))
	}
	return out
}
