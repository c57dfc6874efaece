package testutils

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/registry"
	"github.com/conneroisu/lmscards/internal/renderer"
	"github.com/conneroisu/lmscards/internal/snapshot"
	"github.com/conneroisu/lmscards/internal/types"
)

// UpdateGoldenEnv names the environment variable that switches golden tests
// to rewriting their files.
const UpdateGoldenEnv = "LMSCARDS_UPDATE_GOLDEN"

// GoldenTester compares rendered card markup against golden files.
type GoldenTester struct {
	goldenDir  string
	updateMode bool
	renderer   *renderer.CardRenderer
}

// GoldenCase is one card rendering checked against a golden file. A nil
// State renders the entity-not-found placeholder.
type GoldenCase struct {
	Name       string
	Card       string
	Config     map[string]interface{}
	State      *types.Snapshot
	GoldenFile string
}

// GoldenResult contains the outcome of one golden comparison.
type GoldenResult struct {
	Case         GoldenCase
	Passed       bool
	Expected     string
	Actual       string
	Diff         string
	Error        error
	OutputHash   string
	ExpectedHash string
}

// NewGoldenTester creates a tester over the built-in cards. updateMode
// rewrites golden files instead of comparing against them.
func NewGoldenTester(goldenDir string, updateMode bool) (*GoldenTester, error) {
	reg := registry.NewCardRegistry()
	if err := cards.Bootstrap(reg); err != nil {
		return nil, err
	}

	return &GoldenTester{
		goldenDir:  goldenDir,
		updateMode: updateMode,
		renderer:   renderer.NewCardRenderer(reg),
	}, nil
}

// UpdateGoldenFromEnv reports whether UpdateGoldenEnv is set.
func UpdateGoldenFromEnv() bool {
	return os.Getenv(UpdateGoldenEnv) != ""
}

// Run renders c and compares the markup with its golden file.
func (gt *GoldenTester) Run(c GoldenCase) *GoldenResult {
	result := &GoldenResult{Case: c}

	output, err := gt.render(c)
	if err != nil {
		result.Error = fmt.Errorf("failed to render %s: %w", c.Card, err)
		return result
	}

	result.Actual = string(output)
	result.OutputHash = hashContent(output)

	goldenPath := filepath.Join(gt.goldenDir, c.GoldenFile)

	if gt.updateMode {
		if err := writeGoldenFile(goldenPath, output); err != nil {
			result.Error = fmt.Errorf("failed to update golden file %s: %w", goldenPath, err)
			return result
		}
		result.Passed = true
		return result
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read golden file %s: %w", goldenPath, err)
		return result
	}

	result.Expected = string(expected)
	result.ExpectedHash = hashContent(expected)

	if bytes.Equal(output, expected) {
		result.Passed = true
	} else {
		result.Diff = generateDiff(expected, output)
	}

	return result
}

// RunSuite runs every case as a subtest and fails those that drift.
func (gt *GoldenTester) RunSuite(t *testing.T, cases []GoldenCase) []*GoldenResult {
	t.Helper()
	results := make([]*GoldenResult, 0, len(cases))

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			result := gt.Run(c)
			results = append(results, result)

			if result.Error != nil {
				t.Errorf("golden test failed with error: %v", result.Error)
			} else if !result.Passed {
				t.Errorf("rendered markup drifted for %s:\nExpected hash: %s\nActual hash: %s\nDiff:\n%s",
					c.Name, result.ExpectedHash, result.OutputHash, result.Diff)
			}
		})
	}

	return results
}

func (gt *GoldenTester) render(c GoldenCase) ([]byte, error) {
	store := snapshot.NewStore()
	if c.State != nil {
		store.Set(c.State)
	}

	res, err := gt.renderer.RenderCard(context.Background(), c.Card, c.Config, store)
	if err != nil {
		return nil, err
	}

	return []byte(res.Fragment.HTML() + "\n"), nil
}

func hashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func writeGoldenFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// generateDiff lists the lines that differ, position by position.
func generateDiff(expected, actual []byte) string {
	expectedLines := strings.Split(string(expected), "\n")
	actualLines := strings.Split(string(actual), "\n")

	var diff strings.Builder
	diff.WriteString("--- Expected\n")
	diff.WriteString("+++ Actual\n")

	maxLines := len(expectedLines)
	if len(actualLines) > maxLines {
		maxLines = len(actualLines)
	}

	for i := 0; i < maxLines; i++ {
		var expectedLine, actualLine string
		if i < len(expectedLines) {
			expectedLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actualLine = actualLines[i]
		}

		if expectedLine != actualLine {
			if expectedLine != "" {
				fmt.Fprintf(&diff, "-%s\n", expectedLine)
			}
			if actualLine != "" {
				fmt.Fprintf(&diff, "+%s\n", actualLine)
			}
		}
	}

	return diff.String()
}

// GenerateReport summarizes results as Markdown.
func GenerateReport(results []*GoldenResult) string {
	var report strings.Builder

	passed, failed, errored := 0, 0, 0
	for _, result := range results {
		switch {
		case result.Error != nil:
			errored++
		case result.Passed:
			passed++
		default:
			failed++
		}
	}

	report.WriteString("# Golden Render Report\n\n")
	report.WriteString("## Summary\n")
	fmt.Fprintf(&report, "- **Total**: %d\n", len(results))
	fmt.Fprintf(&report, "- **Passed**: %d\n", passed)
	fmt.Fprintf(&report, "- **Failed**: %d\n", failed)
	fmt.Fprintf(&report, "- **Errors**: %d\n\n", errored)

	if failed == 0 && errored == 0 {
		return report.String()
	}

	report.WriteString("## Failed\n\n")
	for _, result := range results {
		if result.Passed && result.Error == nil {
			continue
		}
		fmt.Fprintf(&report, "### %s\n", result.Case.Name)
		fmt.Fprintf(&report, "**Card**: %s\n", result.Case.Card)
		if result.Error != nil {
			fmt.Fprintf(&report, "**Error**: %s\n\n", result.Error)
			continue
		}
		fmt.Fprintf(&report, "**Expected Hash**: %s\n", result.ExpectedHash)
		fmt.Fprintf(&report, "**Actual Hash**: %s\n", result.OutputHash)
		if result.Diff != "" {
			report.WriteString("**Diff**:\n```\n")
			report.WriteString(result.Diff)
			report.WriteString("```\n")
		}
		report.WriteString("\n")
	}

	return report.String()
}
