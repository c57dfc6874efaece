package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conneroisu/lmscards/internal/logging"
	"github.com/conneroisu/lmscards/internal/output"
	"github.com/conneroisu/lmscards/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		writeIssues(&builder, vr.Errors)
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		writeIssues(&builder, vr.Warnings)
	}

	return builder.String()
}

func writeIssues(builder *strings.Builder, issues []ValidationError) {
	for _, issue := range issues {
		builder.WriteString(fmt.Sprintf("  • %s: %s\n", issue.Field, issue.Message))
		for _, suggestion := range issue.Suggestions {
			builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
		}
	}
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateLogConfigDetails(&config.Log, result)
	validateRenderConfigDetails(&config.Render, result)
	validateWatchConfigDetails(&config.Watch, result)
	validateMetricsConfigDetails(&config.Metrics, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.addError("log.level", config.Level, err.Error(),
			"Use one of: debug, info, warn, error, fatal")
	}

	switch strings.ToLower(config.Format) {
	case "", "text", "json":
	default:
		result.addError("log.format", config.Format, fmt.Sprintf("unknown log format '%s'", config.Format),
			"Use 'text' for terminals",
			"Use 'json' when logs are collected by another tool")
	}
}

func validateRenderConfigDetails(config *RenderConfig, result *ValidationResult) {
	if _, err := output.ParseFormat(config.Format); err != nil {
		result.addError("render.format", config.Format, err.Error(),
			"Use 'html' for the raw card fragment",
			"Use 'markdown' or 'terminal' for readable output")
	}

	switch config.SizeStrategy {
	case SizeStatic, SizeMeasured:
	default:
		result.addError("render.size_strategy", config.SizeStrategy,
			fmt.Sprintf("unknown size strategy '%s'", config.SizeStrategy),
			"Use 'static' to report the card's default row count",
			"Use 'measured' to derive rows from the rendered content")
	}

	if config.RowHeight <= 0 {
		result.addError("render.row_height", config.RowHeight, "row height must be positive",
			"The dashboard grid uses 50px rows")
	}

	if config.WordWrap < 0 {
		result.addError("render.word_wrap", config.WordWrap, "word wrap cannot be negative")
	} else if config.WordWrap > 0 && config.WordWrap < 20 {
		result.addWarning("render.word_wrap", config.WordWrap, "very narrow terminal wrap width",
			"Use at least 40 columns for readable cards")
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 {
		result.addError("watch.debounce", config.Debounce, "debounce cannot be negative")
	} else if config.Debounce > 5*time.Second {
		result.addWarning("watch.debounce", config.Debounce, "long debounce delays re-renders",
			"Values between 100ms and 1s work well for editors")
	}

	if config.Pattern != "" && !doublestar.ValidatePattern(config.Pattern) {
		result.addError("watch.pattern", config.Pattern, "invalid glob pattern",
			"Use doublestar syntax such as 'states/**/*.yaml'")
	}
}

func validateMetricsConfigDetails(config *MetricsConfig, result *ValidationResult) {
	if config.Textfile == "" {
		return
	}

	if err := validation.ValidatePath(config.Textfile); err != nil {
		result.addError("metrics.textfile", config.Textfile, err.Error())
		return
	}

	if filepath.Ext(config.Textfile) != ".prom" {
		result.addWarning("metrics.textfile", config.Textfile, "textfile collectors only read *.prom files",
			"Name the file with a .prom extension")
	}
}
