// Package schema defines the per-card item records read from a snapshot's
// items attribute.
//
// Records are decoded once, at the render boundary, with field-level
// defaulting: a missing, null or wrongly typed field becomes its zero value,
// and a missing or non-sequence items attribute becomes an empty list. The
// renderers therefore never deal with optional or untyped data.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/conneroisu/lmscards/internal/types"
)

// ItemsAttribute is the snapshot attribute holding the item sequence.
const ItemsAttribute = "items"

// Announcement is one feed post.
type Announcement struct {
	Title          string
	Content        string // untrusted HTML
	Group          string
	Date           string
	Likes          int
	Created        string
	ProfilePicture string
	Comments       []Comment
}

// Comment is a reply to an announcement. Comments are one level deep.
type Comment struct {
	Author         string
	Content        string
	Likes          int
	ProfilePicture string
}

// Assignment is an upcoming or overdue submission.
type Assignment struct {
	Title string
	Group string
	Due   string
	Link  string
}

// Event is an upcoming calendar event.
type Event struct {
	Title string
	Group string
	Date  string
	Time  string
	Link  string
}

// Records returns the snapshot's items as generic records. Anything other
// than a sequence yields an empty list; sequence elements that are not
// records are skipped.
func Records(snap *types.Snapshot) []map[string]interface{} {
	if snap == nil || snap.Attributes == nil {
		return nil
	}
	return recordList(snap.Attributes[ItemsAttribute])
}

func recordList(v interface{}) []map[string]interface{} {
	var elems []interface{}
	switch items := v.(type) {
	case []interface{}:
		elems = items
	case []map[string]interface{}:
		out := make([]map[string]interface{}, len(items))
		copy(out, items)
		return out
	default:
		return nil
	}

	out := make([]map[string]interface{}, 0, len(elems))
	for _, e := range elems {
		if r, ok := record(e); ok {
			out = append(out, r)
		}
	}
	return out
}

func record(v interface{}) (map[string]interface{}, bool) {
	switch r := v.(type) {
	case map[string]interface{}:
		return r, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(r))
		for k, val := range r {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// DecodeAnnouncements decodes the snapshot's items as announcements.
func DecodeAnnouncements(snap *types.Snapshot) []Announcement {
	records := Records(snap)
	out := make([]Announcement, 0, len(records))
	for _, r := range records {
		out = append(out, Announcement{
			Title:          str(r, "title"),
			Content:        str(r, "content"),
			Group:          str(r, "group"),
			Date:           str(r, "date"),
			Likes:          integer(r, "likes"),
			Created:        str(r, "created"),
			ProfilePicture: str(r, "profile_picture"),
			Comments:       decodeComments(r["comments"]),
		})
	}
	return out
}

func decodeComments(v interface{}) []Comment {
	records := recordList(v)
	out := make([]Comment, 0, len(records))
	for _, r := range records {
		out = append(out, Comment{
			Author:         str(r, "author"),
			Content:        str(r, "content"),
			Likes:          integer(r, "likes"),
			ProfilePicture: str(r, "profile_picture"),
		})
	}
	return out
}

// DecodeAssignments decodes the snapshot's items as assignments.
func DecodeAssignments(snap *types.Snapshot) []Assignment {
	records := Records(snap)
	out := make([]Assignment, 0, len(records))
	for _, r := range records {
		out = append(out, Assignment{
			Title: str(r, "title"),
			Group: str(r, "group"),
			Due:   str(r, "due"),
			Link:  str(r, "link"),
		})
	}
	return out
}

// DecodeEvents decodes the snapshot's items as events.
func DecodeEvents(snap *types.Snapshot) []Event {
	records := Records(snap)
	out := make([]Event, 0, len(records))
	for _, r := range records {
		out = append(out, Event{
			Title: str(r, "title"),
			Group: str(r, "group"),
			Date:  str(r, "date"),
			Time:  str(r, "time"),
			Link:  str(r, "link"),
		})
	}
	return out
}

// str reads a text field. Numbers and booleans are formatted; anything else
// is treated as absent.
func str(r map[string]interface{}, key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// integer reads a count field. Non-numeric values default to 0.
func integer(r map[string]interface{}, key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
		return 0
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
		return 0
	default:
		return 0
	}
}
