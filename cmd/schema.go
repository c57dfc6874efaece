package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/types"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <card-type>",
	Short: "Show the editor schema of a card",
	Long: `Show what a dashboard host needs to offer a card in its editor: the stub
configuration used when the card is first added, the config form fields and
the grid layout hints.

Examples:
  lmscards schema schoology-overdue-card
  lmscards schema custom:schoology-upcoming-card -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

var schemaFlags *StandardFlags

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaFlags = AddStandardFlags(schemaCmd, "output")
}

// cardSchema is everything a host's editor reads from a card.
type cardSchema struct {
	Descriptor types.CardDescriptor    `json:"descriptor" yaml:"descriptor"`
	StubConfig types.Config            `json:"stub_config" yaml:"stub_config"`
	Form       []types.FieldDescriptor `json:"form" yaml:"form"`
	Grid       types.GridOptions       `json:"grid_options" yaml:"grid_options"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	if err := schemaFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, logger, nil)
	if err != nil {
		return err
	}

	card, err := r.Resolve(args[0])
	if err != nil {
		return err
	}

	return writeSchema(cmd.OutOrStdout(), schemaOf(card), schemaFlags.OutputFormat)
}

func schemaOf(card cards.Card) cardSchema {
	return cardSchema{
		Descriptor: card.Descriptor(),
		StubConfig: card.StubConfig(),
		Form:       card.ConfigFormSchema(),
		Grid:       card.GridOptions(),
	}
}

func writeSchema(w io.Writer, s cardSchema, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(s)
	case "table", "":
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	fmt.Fprintf(w, "%s (%s)\n", s.Descriptor.Name, s.Descriptor.Type)
	fmt.Fprintf(w, "Stub entity: %s\n", s.StubConfig.Entity)
	fmt.Fprintf(w, "Grid: %d rows x %d columns (rows %d-%d)\n\n",
		s.Grid.Rows, s.Grid.Columns, s.Grid.MinRows, s.Grid.MaxRows)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tLABEL\tSELECTOR\tREQUIRED\tDOMAIN")
	for _, field := range s.Form {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
			field.Name, field.Label, field.Selector, field.Required, field.Domain)
	}

	return tw.Flush()
}
