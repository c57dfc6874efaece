// Package monitoring records card pipeline metrics on a dedicated prometheus
// registry and writes them in the text exposition format for node exporter's
// textfile collector. There is no HTTP endpoint.
package monitoring

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Render outcomes.
const (
	OutcomePlaceholder = "placeholder"
	OutcomeEmpty       = "empty"
	OutcomeItems       = "items"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "lmscards"

// MetricsCollector owns the card metrics.
type MetricsCollector struct {
	registry           *prometheus.Registry
	renders            *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	renderDuration     *prometheus.HistogramVec
	items              *prometheus.GaugeVec
	instances          *prometheus.GaugeVec
	outputPath         string
}

// NewMetricsCollector creates a collector. When outputPath is set,
// FlushMetrics writes the metrics there.
func NewMetricsCollector(namespace, outputPath string) *MetricsCollector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	mc := &MetricsCollector{
		registry:   prometheus.NewRegistry(),
		outputPath: outputPath,
	}

	mc.renders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Number of card renders by outcome",
	}, []string{"card", "outcome"})
	mc.validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_validation_failures_total",
		Help:      "Number of rejected card configurations by error code",
	}, []string{"card", "code"})
	mc.renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Time spent rendering a card fragment",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"card"})
	mc.items = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rendered_items",
		Help:      "Number of items in the most recent render",
	}, []string{"card", "entity"})
	mc.instances = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "configured_instances",
		Help:      "Number of configured card instances",
	}, []string{"card"})

	mc.registry.MustRegister(
		mc.renders, mc.validationFailures, mc.renderDuration,
		mc.items, mc.instances,
	)

	return mc
}

// RecordRender counts a render and observes its duration.
func (mc *MetricsCollector) RecordRender(card, entity, outcome string, items int, d time.Duration) {
	mc.renders.WithLabelValues(card, outcome).Inc()
	mc.renderDuration.WithLabelValues(card).Observe(d.Seconds())
	mc.items.WithLabelValues(card, entity).Set(float64(items))
}

// RecordValidationFailure counts a rejected configuration.
func (mc *MetricsCollector) RecordValidationFailure(card, code string) {
	if code == "" {
		code = "unknown"
	}
	mc.validationFailures.WithLabelValues(card, code).Inc()
}

// RecordConfigured counts a successfully configured instance.
func (mc *MetricsCollector) RecordConfigured(card string) {
	mc.instances.WithLabelValues(card).Inc()
}

// Registry exposes the underlying registry.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// FlushMetrics writes the metrics to the output path. It is a no-op without
// one.
func (mc *MetricsCollector) FlushMetrics() error {
	if mc.outputPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(mc.outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	if err := prometheus.WriteToTextfile(mc.outputPath, mc.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	return nil
}
