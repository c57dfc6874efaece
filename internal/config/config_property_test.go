//go:build property

package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigurationProperties tests configuration validation properties
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("positive row heights and sane debounces validate", prop.ForAll(
		func(rowHeight float64, debounceMs int, wrap int) bool {
			cfg := Default()
			cfg.Render.RowHeight = rowHeight
			cfg.Watch.Debounce = time.Duration(debounceMs) * time.Millisecond
			cfg.Render.WordWrap = wrap

			result := ValidateConfigWithDetails(cfg)
			return result.Valid && !result.HasWarnings()
		},
		gen.Float64Range(1, 500),
		gen.IntRange(0, 5000),
		gen.IntRange(20, 300),
	))

	properties.Property("non-positive row heights are rejected", prop.ForAll(
		func(rowHeight float64) bool {
			cfg := Default()
			cfg.Render.RowHeight = rowHeight
			return !ValidateConfigWithDetails(cfg).Valid
		},
		gen.Float64Range(-1000, 0),
	))

	properties.Property("any size strategy but static or measured is rejected", prop.ForAll(
		func(strategy string) bool {
			if strategy == SizeStatic || strategy == SizeMeasured {
				return true
			}
			cfg := Default()
			cfg.Render.SizeStrategy = strategy
			return !ValidateConfigWithDetails(cfg).Valid
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
