package cards

import (
	"github.com/conneroisu/lmscards/internal/fragment"
	"github.com/conneroisu/lmscards/internal/schema"
	"github.com/conneroisu/lmscards/internal/types"
)

const (
	// AssignmentsTag is the element name of the upcoming assignments card.
	AssignmentsTag = "schoology-assignments-card"
	// OverdueTag is the element name of the overdue assignments card.
	OverdueTag = "schoology-overdue-card"
)

// NewAssignments returns the upcoming assignments card. Any non-empty entity
// is accepted.
func NewAssignments(opts ...Option) Card {
	return newBase(base{
		descriptor: types.CardDescriptor{
			Type:             AssignmentsTag,
			Name:             "Schoology Assignments",
			Description:      "Assignments that are due soon.",
			Icon:             "mdi:clipboard-text",
			Preview:          true,
			DocumentationURL: DocumentationURL,
		},
		title:        "Upcoming Assignments",
		icon:         "mdi:clipboard-text",
		emptyMessage: "No upcoming assignments",
		stubEntity:   "sensor.schoology_upcoming_assignments",
		grid:         types.GridOptions{Rows: 4, Columns: 12, MinRows: 2, MaxRows: 8},
		body:         assignmentItems,
	}, opts)
}

// NewOverdue returns the overdue assignments card. Any non-empty entity is
// accepted.
func NewOverdue(opts ...Option) Card {
	return newBase(base{
		descriptor: types.CardDescriptor{
			Type:             OverdueTag,
			Name:             "Schoology Overdue Assignments",
			Description:      "Assignments past their due date.",
			Icon:             "mdi:clipboard-alert",
			Preview:          true,
			DocumentationURL: DocumentationURL,
		},
		title:        "Overdue Assignments",
		icon:         "mdi:clipboard-alert",
		emptyMessage: "No overdue assignments",
		stubEntity:   "sensor.schoology_overdue_assignments",
		grid:         types.GridOptions{Rows: 4, Columns: 12, MinRows: 2, MaxRows: 8},
		body:         assignmentItems,
	}, opts)
}

func assignmentItems(snap *types.Snapshot) []fragment.Node {
	records := schema.DecodeAssignments(snap)
	out := make([]fragment.Node, 0, len(records))
	for _, a := range records {
		out = append(out, itemBlock("assignment",
			itemTitle(a.Title, a.Link),
			metaLine(a.Group, a.Due),
		))
	}
	return out
}
