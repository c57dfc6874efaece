package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/lmscards/internal/sanitize"
	"github.com/conneroisu/lmscards/internal/validation"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file]",
	Short: "Sanitize announcement HTML",
	Long: `Run announcement HTML through the sanitizer used by the announcements card
and print the result. Reads the file argument, or stdin when none is given.

Scripts, styles, embedded frames and objects are removed; inline color
declarations are stripped so content follows the dashboard theme.

Examples:
  echo '<p style="color:red">Hi<script>x()</script></p>' | lmscards sanitize
  lmscards sanitize announcement.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()

	if len(args) == 1 {
		if err := validation.ValidatePath(args[0]); err != nil {
			return fmt.Errorf("invalid input path: %w", err)
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	clean := sanitize.HTML(strings.TrimSpace(string(data)))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), clean.String())

	return err
}
