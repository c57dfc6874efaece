package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/lmscards/internal/config"
	"github.com/conneroisu/lmscards/internal/host"
	"github.com/conneroisu/lmscards/internal/logging"
	"github.com/conneroisu/lmscards/internal/monitoring"
	"github.com/conneroisu/lmscards/internal/output"
	"github.com/conneroisu/lmscards/internal/snapshot"
	"github.com/conneroisu/lmscards/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch <card-type>",
	Aliases: []string{"w"},
	Short:   "Re-render a card whenever its state file changes",
	Long: `Host one card instance bound to a state file and push the new state to it
every time the file changes, the way a dashboard host pushes entity updates.
Each render replaces the previous output.

Examples:
  lmscards watch schoology-upcoming-card -s states.yaml
  lmscards watch schoology-overdue-card -s states.json --out card.html
  lmscards watch schoology-announcements-card -s states.yaml -f terminal`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := SetViperBindings(cmd, renderBindings); err != nil {
			return err
		}
		return SetViperBindings(cmd, map[string]string{"debounce": "watch.debounce"})
	},
	RunE: runWatch,
}

var (
	watchFlags *StandardFlags
	watchOut   string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddStandardFlags(watchCmd, "card", "render")
	watchCmd.Flags().StringVar(&watchOut, "out", "", "Write each render to this file instead of stdout")
	watchCmd.Flags().Duration("debounce", config.Default().Watch.Debounce, "Delay before a burst of changes is rendered")
	_ = watchCmd.MarkFlagRequired("snapshot")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := watchFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Watching state file", "card", args[0], "snapshot", watchFlags.Snapshot)

	return watchCard(ctx, cmd.OutOrStdout(), args[0], watchFlags, cfg, logger)
}

// cardWatch re-renders one hosted instance from a state file.
type cardWatch struct {
	inst      *host.Instance
	store     *snapshot.Store
	path      string
	format    output.Format
	converter *output.Converter
	out       io.Writer
	outFile   string
	logger    logging.Logger
	metrics   *monitoring.MetricsCollector
	mutex     sync.Mutex
}

// watchCard renders cardType once, then again after every change to the
// state file, until ctx is done.
func watchCard(
	ctx context.Context,
	w io.Writer,
	cardType string,
	flags *StandardFlags,
	cfg *config.Config,
	logger *logging.CardLogger,
) error {
	format, err := output.ParseFormat(cfg.Render.Format)
	if err != nil {
		return err
	}

	store, err := snapshot.LoadFile(flags.Snapshot)
	if err != nil {
		return err
	}

	mc := monitoring.NewMetricsCollector(cfg.Metrics.Namespace, cfg.Metrics.Textfile)

	r, err := newRenderer(cfg, logger, mc)
	if err != nil {
		return err
	}

	card, err := r.Resolve(cardType)
	if err != nil {
		return err
	}

	raw, err := flags.CardConfig()
	if err != nil {
		return err
	}
	if raw == nil {
		raw = map[string]interface{}{"entity": card.StubConfig().Entity}
	}

	inst := host.New(card, host.WithLogger(logger), host.WithMetrics(mc))
	if err := inst.SetConfig(ctx, raw); err != nil {
		return err
	}

	cw := &cardWatch{
		inst:      inst,
		store:     store,
		path:      flags.Snapshot,
		format:    format,
		converter: newConverter(cfg),
		out:       w,
		outFile:   watchOut,
		logger:    logger.WithComponent("watch"),
		metrics:   mc,
	}

	if err := cw.push(ctx); err != nil {
		return err
	}

	filters := []watcher.FileFilter{watcher.NoTempFilter, watcher.StateFileFilter}
	if cfg.Watch.Pattern != "" {
		filter, err := watcher.PatternFilter(cfg.Watch.Pattern)
		if err != nil {
			return err
		}
		filters = append(filters, filter)
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	for _, filter := range filters {
		fw.AddFilter(filter)
	}
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		return cw.reload(ctx, events)
	})

	if err := fw.WatchFile(flags.Snapshot); err != nil {
		_ = fw.Stop()
		return fmt.Errorf("failed to watch %s: %w", flags.Snapshot, err)
	}

	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	<-ctx.Done()

	return fw.Stop()
}

// reload reads the state file again and pushes it. The last event of the
// batch decides: a file that was moved away or deleted and not recreated
// keeps the previous state on screen, as does a file that fails to load.
func (cw *cardWatch) reload(ctx context.Context, events []watcher.ChangeEvent) error {
	if len(events) > 0 {
		last := events[len(events)-1]
		if last.Type == watcher.EventTypeDeleted || last.Type == watcher.EventTypeRenamed {
			if _, err := os.Stat(cw.path); os.IsNotExist(err) {
				cw.logger.Debug(ctx, "State file moved away", "path", last.Path, "event", last.Type.String())
				return nil
			}
		}
	}

	next, err := snapshot.LoadFile(cw.path)
	if err != nil {
		cw.logger.Warn(ctx, err, "Keeping previous state", "path", cw.path)
		return err
	}
	cw.store.Replace(next)

	return cw.push(ctx)
}

func (cw *cardWatch) push(ctx context.Context) error {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()

	node, err := cw.inst.Push(ctx, cw.store)
	if err != nil {
		return err
	}

	if cw.outFile != "" {
		f, err := os.Create(cw.outFile)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", cw.outFile, err)
		}
		if err := cw.converter.Write(ctx, f, node, cw.format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else if err := cw.converter.Write(ctx, cw.out, node, cw.format); err != nil {
		return err
	}

	if err := cw.metrics.FlushMetrics(); err != nil {
		cw.logger.Warn(ctx, err, "Failed to write metrics")
	}

	cw.logger.Info(ctx, "Card rendered", "push", cw.inst.Pushes(), "size", cw.inst.Size())

	return nil
}
