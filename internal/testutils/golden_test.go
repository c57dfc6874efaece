package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/types"
)

func goldenCases() []GoldenCase {
	events := &types.Snapshot{
		EntityID: "sensor.schoology_upcoming_events",
		State:    "1",
		Attributes: map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"title": "Concert", "group": "Band", "date": "Sat"},
			},
		},
	}

	return []GoldenCase{
		{
			Name:       "upcoming_events",
			Card:       cards.UpcomingTag,
			Config:     map[string]interface{}{"entity": events.EntityID},
			State:      events,
			GoldenFile: "upcoming_events.golden.html",
		},
		{
			Name:       "announcements_missing_entity",
			Card:       cards.AnnouncementsTag,
			Config:     map[string]interface{}{"entity": "sensor.schoology_announcements"},
			GoldenFile: "announcements_missing.golden.html",
		},
	}
}

func TestGoldenTesterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	update, err := NewGoldenTester(dir, true)
	require.NoError(t, err)
	update.RunSuite(t, goldenCases())

	compare, err := NewGoldenTester(dir, false)
	require.NoError(t, err)
	results := compare.RunSuite(t, goldenCases())

	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Passed)
		assert.Equal(t, result.ExpectedHash, result.OutputHash)
	}
	assert.Contains(t, results[0].Actual, "Concert")

	report := GenerateReport(results)
	assert.Contains(t, report, "- **Passed**: 2")
	assert.NotContains(t, report, "## Failed")
}

func TestGoldenTesterDetectsDrift(t *testing.T) {
	dir := t.TempDir()
	c := goldenCases()[0]

	require.NoError(t, os.WriteFile(filepath.Join(dir, c.GoldenFile), []byte("<div>Recital</div>\n"), 0644))

	gt, err := NewGoldenTester(dir, false)
	require.NoError(t, err)

	result := gt.Run(c)
	require.NoError(t, result.Error)
	assert.False(t, result.Passed)
	assert.NotEqual(t, result.ExpectedHash, result.OutputHash)
	assert.Contains(t, result.Diff, "-<div>Recital</div>")

	report := GenerateReport([]*GoldenResult{result})
	assert.Contains(t, report, "- **Failed**: 1")
	assert.Contains(t, report, "### upcoming_events")
}

func TestGoldenTesterErrors(t *testing.T) {
	gt, err := NewGoldenTester(t.TempDir(), false)
	require.NoError(t, err)

	result := gt.Run(goldenCases()[0])
	require.Error(t, result.Error, "golden file does not exist yet")

	result = gt.Run(GoldenCase{Name: "unknown", Card: "no-such-card", GoldenFile: "x.html"})
	require.Error(t, result.Error)

	report := GenerateReport([]*GoldenResult{result})
	assert.Contains(t, report, "- **Errors**: 1")
}

func TestUpdateGoldenFromEnv(t *testing.T) {
	t.Setenv(UpdateGoldenEnv, "")
	assert.False(t, UpdateGoldenFromEnv())

	t.Setenv(UpdateGoldenEnv, "1")
	assert.True(t, UpdateGoldenFromEnv())
}
