package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/lmscards/internal/config"
	"github.com/conneroisu/lmscards/internal/output"
	"github.com/conneroisu/lmscards/internal/validation"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Card flags
	Entity string `flag:"entity,e" desc:"Entity the card is bound to" default:""`
	Title  string `flag:"title" desc:"Header title override" default:""`
	Icon   string `flag:"icon" desc:"Header icon override" default:""`
	Props  string `flag:"props" desc:"Card configuration (JSON or @file.json)" default:""`

	// Render flags
	Snapshot        string `flag:"snapshot,s" desc:"State file (JSON or YAML)" default:""`
	Format          string `flag:"format,f" desc:"Output format (html|markdown|terminal)" default:"html"`
	SizeStrategy    string `flag:"size-strategy" desc:"Size strategy (static|measured)" default:"static"`
	Page            bool   `flag:"page" desc:"Wrap HTML output in a preview page" default:"false"`
	Style           string `flag:"style" desc:"Terminal style" default:"dark"`
	MetricsTextfile string `flag:"metrics-textfile" desc:"Write render metrics to a .prom file" default:""`

	// Output flags
	OutputFormat string `flag:"output,o" desc:"Output format (table|json|yaml)" default:"table"`
	Verbose      bool   `flag:"verbose,v" desc:"Enable verbose output" default:"false"`
	Quiet        bool   `flag:"quiet,q" desc:"Suppress output" default:"false"`
}

// renderBindings maps render flags to configuration keys.
var renderBindings = map[string]string{
	"format":           "render.format",
	"size-strategy":    "render.size_strategy",
	"page":             "render.page",
	"style":            "render.style",
	"metrics-textfile": "metrics.textfile",
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "card":
			addCardFlags(cmd, flags)
		case "render":
			addRenderFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addCardFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Entity, "entity", "e", "", "Entity the card is bound to")
	cmd.Flags().StringVar(&flags.Title, "title", "", "Header title override")
	cmd.Flags().StringVar(&flags.Icon, "icon", "", "Header icon override")
	cmd.Flags().StringVar(&flags.Props, "props", "", "Card configuration (JSON or @file.json)")
}

func addRenderFlags(cmd *cobra.Command, flags *StandardFlags) {
	d := config.Default()
	cmd.Flags().StringVarP(&flags.Snapshot, "snapshot", "s", "", "State file (JSON or YAML)")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", d.Render.Format, "Output format (html|markdown|terminal)")
	cmd.Flags().StringVar(&flags.SizeStrategy, "size-strategy", d.Render.SizeStrategy, "Size strategy (static|measured)")
	cmd.Flags().BoolVar(&flags.Page, "page", false, "Wrap HTML output in a preview page")
	cmd.Flags().StringVar(&flags.Style, "style", d.Render.Style, "Terminal style (dark, light, notty, ...)")
	cmd.Flags().StringVar(&flags.MetricsTextfile, "metrics-textfile", "", "Write render metrics to a .prom file")

	AddFlagValidation(cmd, "format", func(format string) error {
		_, err := output.ParseFormat(format)
		return err
	})
	AddFlagValidation(cmd, "size-strategy", func(strategy string) error {
		return ValidateFormatWithSuggestion(strategy, []string{config.SizeStatic, config.SizeMeasured})
	})
	AddFlagValidation(cmd, "snapshot", ValidateFileExists)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")
}

// CardConfig builds the raw card configuration from the card flags. It
// returns nil when none is set so the card's stub entity is used.
func (f *StandardFlags) CardConfig() (map[string]interface{}, error) {
	props, err := f.parseProps()
	if err != nil {
		return nil, err
	}

	for key, val := range map[string]string{"entity": f.Entity, "title": f.Title, "icon": f.Icon} {
		if val == "" {
			continue
		}
		if props == nil {
			props = make(map[string]interface{})
		}
		props[key] = val
	}

	return props, nil
}

// parseProps parses --props with support for file references
func (f *StandardFlags) parseProps() (map[string]interface{}, error) {
	if f.Props == "" {
		return nil, nil
	}

	data := []byte(f.Props)
	source := "props"

	if strings.HasPrefix(f.Props, "@") {
		filename := strings.TrimPrefix(f.Props, "@")
		if err := validation.ValidatePath(filename); err != nil {
			return nil, fmt.Errorf("invalid props file %s: %w", filename, err)
		}

		raw, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read props file %s: %w", filename, err)
		}
		data = raw
		source = "props file " + filename
	}

	var props map[string]interface{}
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", source, err)
	}

	return props, nil
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.OutputFormat != "" {
		if err := ValidateFormatWithSuggestion(f.OutputFormat, []string{"table", "json", "yaml"}); err != nil {
			return err
		}
	}

	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}

	if f.Page && f.Format != "" {
		format, err := output.ParseFormat(f.Format)
		if err != nil {
			return err
		}
		if format != output.FormatHTML {
			return fmt.Errorf("--page only applies to html output, got %s", format)
		}
	}

	return nil
}

// SetViperBindings binds flags to configuration keys so that a flag set on
// the command line overrides the config file and the environment.
func SetViperBindings(cmd *cobra.Command, bindings map[string]string) error {
	for flagName, configKey := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(configKey, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flagName, err)
		}
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: flag.Value.Set,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateFormatWithSuggestion checks value against valid and points at
// the closest candidate when it does not match.
func ValidateFormatWithSuggestion(value string, valid []string) error {
	lower := strings.ToLower(value)
	for _, candidate := range valid {
		if lower == candidate {
			return nil
		}
	}

	msg := fmt.Sprintf("invalid value %q, must be one of: %s", value, strings.Join(valid, ", "))
	if lower != "" {
		for _, candidate := range valid {
			if strings.HasPrefix(candidate, lower) || strings.HasPrefix(lower, candidate) {
				msg += fmt.Sprintf(" (did you mean %q?)", candidate)
				break
			}
		}
	}

	return errors.New(msg)
}

// ValidateFileExists checks that an optional file exists
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
