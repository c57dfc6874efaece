//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebounceProperties validates the batching guarantees of the debouncer
func TestDebounceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	toEvents := func(ids []int) []ChangeEvent {
		events := make([]ChangeEvent, 0, len(ids))
		for i, id := range ids {
			events = append(events, ChangeEvent{
				Path: fmt.Sprintf("states-%d.yaml", id),
				Type: EventType(i % 4),
			})
		}
		return events
	}

	properties.Property("dedupe keeps one event per path", prop.ForAll(
		func(ids []int) bool {
			distinct := make(map[int]bool)
			for _, id := range ids {
				distinct[id] = true
			}
			return len(dedupe(toEvents(ids))) == len(distinct)
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.Property("dedupe output is sorted by path", prop.ForAll(
		func(ids []int) bool {
			events := dedupe(toEvents(ids))
			return sort.SliceIsSorted(events, func(i, j int) bool {
				return events[i].Path < events[j].Path
			})
		},
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.Property("last event per path wins", prop.ForAll(
		func(ids []int) bool {
			events := toEvents(ids)
			last := make(map[string]EventType)
			for _, ev := range events {
				last[ev.Path] = ev.Type
			}
			for _, ev := range dedupe(events) {
				if last[ev.Path] != ev.Type {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
