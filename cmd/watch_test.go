package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/host"
	"github.com/conneroisu/lmscards/internal/logging"
	"github.com/conneroisu/lmscards/internal/monitoring"
	"github.com/conneroisu/lmscards/internal/output"
	"github.com/conneroisu/lmscards/internal/snapshot"
	"github.com/conneroisu/lmscards/internal/testutils"
	"github.com/conneroisu/lmscards/internal/watcher"
)

func eventStates(t *testing.T, dir string, titles ...string) string {
	t.Helper()

	records := make([]map[string]interface{}, 0, len(titles))
	for _, title := range titles {
		records = append(records, map[string]interface{}{"title": title, "group": "Band", "date": "Sat"})
	}

	return testutils.WriteStateFile(t, dir, "states.yaml", map[string]testutils.State{
		"sensor.schoology_upcoming_events": testutils.Items(records...),
	})
}

func readOut(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func TestWatchCardRerendersOnChange(t *testing.T) {
	before := goleak.IgnoreCurrent()

	dir := testutils.CreateTempWorkspace(t)
	states := eventStates(t, dir, "Concert")
	out := filepath.Join(dir, "card.html")

	watchOut = out
	t.Cleanup(func() { watchOut = "" })

	cfg := testutils.CreateTestConfig("html")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watchCard(ctx, &bytes.Buffer{}, cards.UpcomingTag, &StandardFlags{Snapshot: states}, cfg, logging.Nop())
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(readOut(out), "Concert")
	}, 5*time.Second, 20*time.Millisecond)

	// Give the watcher time to register before the file changes.
	time.Sleep(100 * time.Millisecond)
	eventStates(t, dir, "Recital", "Game")

	require.Eventually(t, func() bool {
		content := readOut(out)
		return strings.Contains(content, "Recital") &&
			!strings.Contains(content, "Concert")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	goleak.VerifyNone(t, before)
}

func TestWatchCardRejectsBadConfig(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	states := eventStates(t, dir, "Concert")

	err := watchCard(context.Background(), &bytes.Buffer{}, cards.UpcomingTag,
		&StandardFlags{Snapshot: states, Entity: "sensor.grades"},
		testutils.CreateTestConfig("html"), logging.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEntityKeyword))

	err = watchCard(context.Background(), &bytes.Buffer{}, cards.UpcomingTag,
		&StandardFlags{Snapshot: filepath.Join(dir, "missing.yaml")},
		testutils.CreateTestConfig("html"), logging.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSnapshotInvalid))
}

func TestWatchCardBadPattern(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	states := eventStates(t, dir, "Concert")

	cfg := testutils.CreateTestConfig("html")
	cfg.Watch.Pattern = "[states"

	var out bytes.Buffer
	err := watchCard(context.Background(), &out, cards.UpcomingTag, &StandardFlags{Snapshot: states}, cfg, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, out.String(), "Concert", "first render happens before the watcher starts")
}

func newTestCardWatch(t *testing.T, states string, out *bytes.Buffer) *cardWatch {
	t.Helper()

	store, err := snapshot.LoadFile(states)
	require.NoError(t, err)

	inst := host.New(cards.NewUpcoming())
	require.NoError(t, inst.SetConfig(context.Background(), map[string]interface{}{
		"entity": "sensor.schoology_upcoming_events",
	}))

	return &cardWatch{
		inst:      inst,
		store:     store,
		path:      states,
		format:    output.FormatHTML,
		converter: output.NewConverter(),
		out:       out,
		logger:    logging.Nop(),
		metrics:   monitoring.NewMetricsCollector("test", ""),
	}
}

func TestReloadAfterRenameAndCreate(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	states := eventStates(t, dir, "Concert")

	var out bytes.Buffer
	cw := newTestCardWatch(t, states, &out)

	eventStates(t, dir, "Recital")
	err := cw.reload(context.Background(), []watcher.ChangeEvent{
		{Type: watcher.EventTypeRenamed, Path: states},
		{Type: watcher.EventTypeCreated, Path: states},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Recital")
	assert.Equal(t, 1, cw.inst.Pushes())
}

func TestReloadKeepsStateWhenFileIsGone(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	states := eventStates(t, dir, "Concert")

	var out bytes.Buffer
	cw := newTestCardWatch(t, states, &out)

	require.NoError(t, os.Remove(states))
	err := cw.reload(context.Background(), []watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: states},
		{Type: watcher.EventTypeDeleted, Path: states},
	})
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, 0, cw.inst.Pushes())
}
