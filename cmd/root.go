// Package cmd provides the command-line interface for lmscards with layered
// configuration management.
//
// Configuration System:
//
//	The CLI resolves configuration from several sources with clear precedence:
//	1. Command-line flags (--config, --format, etc.) - highest priority
//	2. LMSCARDS_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (LMSCARDS_RENDER_FORMAT, etc.)
//	4. Configuration files (.lmscards.yml) - lowest priority
//
// Environment Variables:
//
//	LMSCARDS_CONFIG_FILE: Path to custom configuration file
//	LMSCARDS_LOG_LEVEL: Override log level
//	LMSCARDS_RENDER_FORMAT: Output format (html, markdown, terminal)
//	LMSCARDS_WATCH_DEBOUNCE: Debounce delay of the state file watcher
//	And the rest following the LMSCARDS_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/lmscards/internal/cards"
	"github.com/conneroisu/lmscards/internal/config"
	"github.com/conneroisu/lmscards/internal/errors"
	"github.com/conneroisu/lmscards/internal/logging"
	"github.com/conneroisu/lmscards/internal/registry"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lmscards",
	Short: "Dashboard cards for LMS sensors",
	Long: `lmscards renders the Schoology dashboard cards (announcements, upcoming
assignments, overdue assignments and upcoming events) outside of a dashboard
host, for previewing, validating and scripting card configurations.

Key Features:
  • Card registry with picker metadata and config form schemas
  • Config validation with entity domain and keyword rules
  • Rendering against sample data or a state file
  • HTML, Markdown and terminal output
  • Live re-render when the state file changes

Quick Start:
  lmscards cards                                   List registered cards
  lmscards render schoology-overdue-card           Preview with sample data
  lmscards render schoology-upcoming-card \
      --entity sensor.schoology_upcoming_events \
      --snapshot states.yaml --format terminal     Render real state
  lmscards validate --file dashboard.yaml          Check a dashboard file
  lmscards watch schoology-announcements-card \
      --snapshot states.yaml --out card.html       Re-render on change

Documentation: ` + cards.DocumentationURL,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	reportError(rootCmd.ErrOrStderr(), err)
	return err
}

// reportError prints err with any configuration suggestions it carries.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, "Error:", errors.FormatErrorWithSuggestions(err))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .lmscards.yml, can also use LMSCARDS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. LMSCARDS_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .lmscards.yml in current directory
//
// Every key can also be overridden from the environment with the LMSCARDS_
// prefix, e.g. LMSCARDS_RENDER_SIZE_STRATEGY=measured.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lmscards")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadRuntime loads the configuration and builds the logger every command
// shares. Logs go to the command's error stream.
func loadRuntime(cmd *cobra.Command) (*config.Config, *logging.CardLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*logging.CardLogger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    w,
		Component: "cli",
	}), nil
}

var (
	bootstrapOnce sync.Once
	bootstrapErr  error
)

// newCardRegistry returns the process-wide registry. The built-in cards are
// registered into it on first use, and each registration is logged.
func newCardRegistry(logger logging.Logger) (*registry.CardRegistry, error) {
	reg := registry.Default()

	bootstrapOnce.Do(func() {
		events := reg.Watch()
		defer reg.UnWatch(events)

		bootstrapErr = cards.Bootstrap(reg)
		logRegistryEvents(logger, events)
	})

	if bootstrapErr != nil {
		return nil, fmt.Errorf("failed to register cards: %w", bootstrapErr)
	}
	return reg, nil
}

// logRegistryEvents drains the events already queued on events.
func logRegistryEvents(logger logging.Logger, events <-chan registry.CardEvent) {
	ctx := context.Background()
	for {
		select {
		case ev := <-events:
			switch ev.Type {
			case registry.EventTypeRejected:
				logger.Warn(ctx, nil, "Card registration rejected", "type", ev.Descriptor.Type)
			default:
				logger.Debug(ctx, "Card registered", "type", ev.Descriptor.Type, "event", ev.Type.String())
			}
		default:
			return
		}
	}
}
