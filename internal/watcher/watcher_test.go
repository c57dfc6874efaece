package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mutex   sync.Mutex
	batches [][]ChangeEvent
}

func (r *recorder) handle(events []ChangeEvent) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.batches = append(r.batches, events)
	return nil
}

func (r *recorder) paths() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var out []string
	for _, batch := range r.batches {
		for _, ev := range batch {
			out = append(out, filepath.Base(ev.Path))
		}
	}
	return out
}

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.NotNil(t, watcher.logger)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NoError(t, watcher.AddPath(t.TempDir()))
	assert.Error(t, watcher.AddPath("/non/existent/path"))
	assert.Error(t, watcher.AddPath("../../../etc"))
	assert.Error(t, watcher.AddPath(""))
}

func TestWatchFileReportsRewrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "states.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0644))

	watcher, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.WatchFile(target))

	rec := &recorder{}
	watcher.AddHandler(rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 2\n"), 0644))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte(fmt.Sprintf("a: %d\n", i)), 0644))
	}

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	for _, name := range rec.paths() {
		assert.Equal(t, "states.yaml", name)
	}

	require.NoError(t, watcher.Stop())
}

func TestStartTwice(t *testing.T) {
	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Start(ctx))
	assert.Error(t, watcher.Start(ctx))
	require.NoError(t, watcher.Stop())
}

func TestStopWaitsForGoroutines(t *testing.T) {
	before := goleak.IgnoreCurrent()

	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.AddPath(t.TempDir()))

	require.NoError(t, watcher.Start(context.Background()))
	require.NoError(t, watcher.Stop())

	goleak.VerifyNone(t, before)
}

func TestFileWatcherDoubleStop(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestHandlerErrorsDoNotStopProcessing(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.AddPath(dir))
	watcher.AddFilter(StateFileFilter)

	rec := &recorder{}
	watcher.AddHandler(func([]ChangeEvent) error { return fmt.Errorf("boom") })
	watcher.AddHandler(rec.handle)

	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "states.json"), []byte("{}"), 0644))

	assert.Eventually(t, func() bool {
		for _, p := range rec.paths() {
			if p == "states.json" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, rec.paths(), "notes.txt")
}

func TestDebouncer(t *testing.T) {
	debouncer := newDebouncer(30 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		debouncer.start(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
		debouncer.stop()
	}()

	debouncer.events <- ChangeEvent{Path: "b.yaml", Type: EventTypeCreated}
	debouncer.events <- ChangeEvent{Path: "a.yaml", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "b.yaml", Type: EventTypeModified}

	select {
	case events := <-debouncer.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a.yaml", events[0].Path)
		assert.Equal(t, "b.yaml", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type, "last event per path wins")
	case <-time.After(2 * time.Second):
		t.Fatal("no debounced batch")
	}
}

func TestDebouncerFlushEmpty(t *testing.T) {
	debouncer := newDebouncer(time.Millisecond)
	debouncer.flush()
	assert.Empty(t, debouncer.output)
}

func TestStateFileFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"states.json", true},
		{"states.YAML", true},
		{"dir/states.yml", true},
		{"states.txt", false},
		{"states", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, StateFileFilter(tc.path))
		})
	}
}

func TestNoTempFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"states.yaml", true},
		{"states.yaml~", false},
		{".states.yaml.swp", false},
		{"dir/.#states.yaml", false},
		{"states.tmp", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoTempFilter(tc.path))
		})
	}
}

func TestNameFilter(t *testing.T) {
	filter := NameFilter("states.yaml")
	assert.True(t, filter("/tmp/x/states.yaml"))
	assert.False(t, filter("/tmp/x/states.yaml.bak"))
}

func TestPatternFilter(t *testing.T) {
	testCases := []struct {
		pattern  string
		path     string
		expected bool
	}{
		{"*.yaml", "/home/u/states.yaml", true},
		{"*.yaml", "/home/u/states.json", false},
		{"*.{json,yaml}", "states.json", true},
		{"fixtures/**/*.json", "fixtures/a/b/states.json", true},
		{"fixtures/**/*.json", "other/states.json", false},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern+" "+tc.path, func(t *testing.T) {
			filter, err := PatternFilter(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}

	_, err := PatternFilter("[unclosed")
	assert.Error(t, err)
}
