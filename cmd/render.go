package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/config"
	"github.com/conneroisu/lmscards/internal/host"
	"github.com/conneroisu/lmscards/internal/logging"
	"github.com/conneroisu/lmscards/internal/monitoring"
	"github.com/conneroisu/lmscards/internal/output"
	"github.com/conneroisu/lmscards/internal/renderer"
	"github.com/conneroisu/lmscards/internal/size"
	"github.com/conneroisu/lmscards/internal/snapshot"
)

var renderCmd = &cobra.Command{
	Use:     "render <card-type>",
	Aliases: []string{"r"},
	Short:   "Render a card",
	Long: `Render one card against a state file, or against sample data when no
state file is given. The card type may carry the "custom:" prefix used in
dashboard files.

Examples:
  lmscards render schoology-overdue-card
  lmscards render schoology-upcoming-card -e sensor.schoology_upcoming_events -s states.yaml
  lmscards render custom:schoology-announcements-card --format markdown
  lmscards render schoology-assignments-card --page > preview.html
  lmscards render schoology-assignments-card --props '{"entity":"sensor.schoology_assignments","title":"Homework"}'`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return SetViperBindings(cmd, renderBindings)
	},
	RunE: runRender,
}

var renderFlags *StandardFlags

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags = AddStandardFlags(renderCmd, "card", "render")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := renderFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	return renderTo(cmd.Context(), cmd.OutOrStdout(), args[0], renderFlags, cfg, logger)
}

// renderTo renders cardType once and writes it to w in the configured
// format.
func renderTo(
	ctx context.Context,
	w io.Writer,
	cardType string,
	flags *StandardFlags,
	cfg *config.Config,
	logger *logging.CardLogger,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	perf := logger.StartOperation("render")

	raw, err := flags.CardConfig()
	if err != nil {
		return err
	}

	var lookup snapshot.Lookup
	if flags.Snapshot != "" {
		store, err := snapshot.LoadFile(flags.Snapshot)
		if err != nil {
			return err
		}
		lookup = store
	}

	mc := monitoring.NewMetricsCollector(cfg.Metrics.Namespace, cfg.Metrics.Textfile)

	r, err := newRenderer(cfg, logger, mc)
	if err != nil {
		return err
	}

	res, err := r.RenderCard(ctx, cardType, raw, lookup)
	if err != nil {
		return err
	}

	if cfg.Render.Page {
		page, err := r.RenderCardWithLayout(ctx, res, renderer.PageOptions{Title: flags.Title})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, page); err != nil {
			return err
		}
	} else {
		format, err := output.ParseFormat(cfg.Render.Format)
		if err != nil {
			return err
		}
		if err := newConverter(cfg).Write(ctx, w, res.Fragment, format); err != nil {
			return err
		}
	}

	if err := mc.FlushMetrics(); err != nil {
		logger.Warn(ctx, err, "Failed to write metrics", "path", cfg.Metrics.Textfile)
	}

	perf.End(ctx,
		"card", res.Card.Tag(),
		"entity", res.Config.Entity,
		"size", res.Size,
		"instance", res.Instance.ID())

	return nil
}

// newRenderer builds a renderer over the built-in cards whose instances
// log to logger and record into mc.
func newRenderer(cfg *config.Config, logger logging.Logger, mc *monitoring.MetricsCollector) (*renderer.CardRenderer, error) {
	reg, err := newCardRegistry(logger)
	if err != nil {
		return nil, err
	}

	opts := []renderer.Option{
		renderer.WithHostOptions(host.WithLogger(logger), host.WithMetrics(mc)),
	}
	if est := estimator(cfg); est != nil {
		opts = append(opts, renderer.WithCardOptions(cards.WithEstimator(est)))
	}

	return renderer.NewCardRenderer(reg, opts...), nil
}

// estimator returns the size estimator the configuration asks for, or nil
// for each card's static grid rows.
func estimator(cfg *config.Config) size.Estimator {
	if cfg.Render.SizeStrategy != config.SizeMeasured {
		return nil
	}

	return size.Measured{
		RowHeight: int(cfg.Render.RowHeight),
		Measure:   size.EstimateHeight,
		Fallback:  1,
	}
}

func newConverter(cfg *config.Config) *output.Converter {
	return output.NewConverter(
		output.WithStyle(cfg.Render.Style),
		output.WithWordWrap(cfg.Render.WordWrap),
	)
}
