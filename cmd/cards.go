package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/lmscards/internal/types"
)

var cardsCmd = &cobra.Command{
	Use:     "cards",
	Aliases: []string{"list", "l"},
	Short:   "List registered cards",
	Long: `List the registered card types with the metadata a dashboard host shows in
its card picker.

Examples:
  lmscards cards                  # Table of card types
  lmscards cards -o json          # Descriptors as JSON
  lmscards cards -o yaml -v       # Include documentation links`,
	Args: cobra.NoArgs,
	RunE: runCards,
}

var cardsFlags *StandardFlags

func init() {
	rootCmd.AddCommand(cardsCmd)

	cardsFlags = AddStandardFlags(cardsCmd, "output")

	AddFlagValidation(cardsCmd, "output", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml"})
	})
}

func runCards(cmd *cobra.Command, args []string) error {
	if err := cardsFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	reg, err := newCardRegistry(logger)
	if err != nil {
		return err
	}

	return writeDescriptors(cmd.OutOrStdout(), reg.Descriptors(), cardsFlags)
}

func writeDescriptors(w io.Writer, descs []types.CardDescriptor, flags *StandardFlags) error {
	switch strings.ToLower(flags.OutputFormat) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(descs)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(descs)
	case "table", "":
		return writeDescriptorTable(w, descs, flags)
	default:
		return fmt.Errorf("unsupported format: %s", flags.OutputFormat)
	}
}

func writeDescriptorTable(w io.Writer, descs []types.CardDescriptor, flags *StandardFlags) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "TYPE\tNAME\tPREVIEW\tDESCRIPTION"
	separator := strings.Repeat("-", 4) + "\t" + strings.Repeat("-", 4) + "\t" +
		strings.Repeat("-", 7) + "\t" + strings.Repeat("-", 11)
	if flags.Verbose {
		header += "\tDOCUMENTATION"
		separator += "\t" + strings.Repeat("-", 13)
	}

	if !flags.Quiet {
		fmt.Fprintln(tw, header)
		fmt.Fprintln(tw, separator)
	}

	for _, desc := range descs {
		row := fmt.Sprintf("%s\t%s\t%t\t%s", desc.Type, desc.Name, desc.Preview, desc.Description)
		if flags.Verbose {
			row += "\t" + desc.DocumentationURL
		}
		fmt.Fprintln(tw, row)
	}

	if !flags.Quiet {
		fmt.Fprintf(tw, "\nTotal: %d cards\n", len(descs))
	}

	return tw.Flush()
}
