// Package config provides configuration management for lmscards using Viper
// for flexible configuration loading from files, environment variables and
// command-line flags.
//
// The configuration system supports YAML or JSON files, environment variable
// overrides with the LMSCARDS_ prefix, defaults and validation. It covers
// logging, the render pipeline (output format and size strategy), the state
// file watcher and the metrics textfile.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/lmscards/internal/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g. LMSCARDS_LOG_LEVEL.
const EnvPrefix = "LMSCARDS"

// Size strategies.
const (
	SizeStatic   = "static"
	SizeMeasured = "measured"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type RenderConfig struct {
	Format       string  `mapstructure:"format" yaml:"format"`
	SizeStrategy string  `mapstructure:"size_strategy" yaml:"size_strategy"`
	RowHeight    float64 `mapstructure:"row_height" yaml:"row_height"`
	Page         bool    `mapstructure:"page" yaml:"page"`
	Style        string  `mapstructure:"style" yaml:"style"`
	WordWrap     int     `mapstructure:"word_wrap" yaml:"word_wrap"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Pattern  string        `mapstructure:"pattern" yaml:"pattern"`
}

type MetricsConfig struct {
	Textfile  string `mapstructure:"textfile" yaml:"textfile"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Render: RenderConfig{
			Format:       "html",
			SizeStrategy: SizeStatic,
			RowHeight:    50,
			Style:        "dark",
			WordWrap:     80,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Namespace: "lmscards",
		},
	}
}

// SetDefaults registers the defaults on v so that environment variables
// are picked up for every key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("render.format", d.Render.Format)
	v.SetDefault("render.size_strategy", d.Render.SizeStrategy)
	v.SetDefault("render.row_height", d.Render.RowHeight)
	v.SetDefault("render.page", d.Render.Page)
	v.SetDefault("render.style", d.Render.Style)
	v.SetDefault("render.word_wrap", d.Render.WordWrap)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.pattern", d.Watch.Pattern)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults for anything
// left unset and validates the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	if config.Metrics.Namespace == "" {
		config.Metrics.Namespace = Default().Metrics.Namespace
	}

	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		return nil, errors.WrapConfig(&result.Errors[0], errors.ErrCodeConfigInvalid, "invalid configuration").
			WithContext("suggestions", result.Errors[0].Suggestions)
	}

	return config, nil
}
