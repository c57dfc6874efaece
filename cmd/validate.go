package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/lmscards/internal/config"
	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/renderer"
)

var (
	validateFile   string
	validateFormat string
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [card-type]",
	Short: "Validate card configurations",
	Long: `Validate card configurations the way a dashboard host does when a card is
added:

- The card type must be registered
- An entity is required and must be a sensor
- Cards with a keyword rule require the keyword in the entity id

Either validate one card from flags, or every card of a dashboard file.

Examples:
  lmscards validate schoology-overdue-card -e sensor.schoology_overdue_assignments
  lmscards validate --file dashboard.yaml
  lmscards validate --file dashboard.yaml --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidateCommand,
}

var validateCardFlags *StandardFlags

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCardFlags = AddStandardFlags(validateCmd, "card")
	validateCmd.Flags().
		StringVar(&validateFile, "file", "", "Dashboard file listing card configurations")
	validateCmd.Flags().
		StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")

	AddFlagValidation(validateCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"text", "json"})
	})
}

type CardValidationResult struct {
	Index       int      `json:"index"`
	Type        string   `json:"type"`
	Entity      string   `json:"entity,omitempty"`
	Valid       bool     `json:"valid"`
	Code        string   `json:"code,omitempty"`
	Error       string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type ValidationSummary struct {
	Total   int                    `json:"total"`
	Valid   int                    `json:"valid"`
	Invalid int                    `json:"invalid"`
	Results []CardValidationResult `json:"results"`
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	entries, err := validationEntries(args)
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, logger, nil)
	if err != nil {
		return err
	}

	summary := validateEntries(r, entries)

	switch validateFormat {
	case "json":
		if err := outputValidationJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	default:
		outputValidationText(cmd.OutOrStdout(), summary)
	}

	if summary.Invalid > 0 {
		return fmt.Errorf("validation failed: %d invalid cards", summary.Invalid)
	}

	return nil
}

func validationEntries(args []string) ([]config.CardEntry, error) {
	if validateFile != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot combine a card type with --file")
		}
		return config.LoadDashboard(validateFile)
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("a card type or --file is required")
	}

	raw, err := validateCardFlags.CardConfig()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	return []config.CardEntry{{Type: args[0], Config: raw}}, nil
}

// validateEntries checks every entry and collects the failures.
func validateEntries(r *renderer.CardRenderer, entries []config.CardEntry) ValidationSummary {
	collector := errors.NewErrorCollector()
	summary := ValidationSummary{Total: len(entries)}

	for i, entry := range entries {
		result := CardValidationResult{Index: i + 1, Type: entry.Type}
		if entity, ok := entry.Config["entity"].(string); ok {
			result.Entity = entity
		}

		card, err := r.Resolve(entry.Type)
		if err == nil {
			_, err = card.ValidateConfig(entry.Config)
		}
		collector.AddCardError(result.Index, entry.Type, err)

		summary.Results = append(summary.Results, result)
	}

	if collector.HasErrors() {
		for _, issue := range collector.GetIssues() {
			result := &summary.Results[issue.Index-1]
			result.Code = issue.Code
			result.Error = issue.Message
			result.Suggestions = issue.Suggestions
		}
	}

	for i := range summary.Results {
		summary.Results[i].Valid = summary.Results[i].Code == ""
		if summary.Results[i].Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
	}

	return summary
}

func outputValidationText(w io.Writer, summary ValidationSummary) {
	fmt.Fprintf(w, "Validation Summary:\n")
	fmt.Fprintf(w, "  Total cards: %d\n", summary.Total)
	fmt.Fprintf(w, "  Valid: %d\n", summary.Valid)
	fmt.Fprintf(w, "  Invalid: %d\n", summary.Invalid)
	fmt.Fprintln(w)

	for _, result := range summary.Results {
		status := "✅"
		if !result.Valid {
			status = "❌"
		}

		fmt.Fprintf(w, "%s #%d %s", status, result.Index, result.Type)
		if result.Entity != "" {
			fmt.Fprintf(w, " (%s)", result.Entity)
		}
		fmt.Fprintln(w)

		if !result.Valid {
			fmt.Fprintf(w, "    Error: [%s] %s\n", result.Code, result.Error)
			for _, suggestion := range result.Suggestions {
				fmt.Fprintf(w, "    Suggestion: %s\n", suggestion)
			}
		}
	}

	if summary.Invalid == 0 {
		fmt.Fprintln(w, "✅ All cards are valid!")
	}
}

func outputValidationJSON(w io.Writer, summary ValidationSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(summary)
}
