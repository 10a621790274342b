package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/recoupable/api-sub002"
)

// Metrics holds the OpenTelemetry metric instruments for the
// authorization engine.
type Metrics struct {
	// Credential resolution metrics
	ResolutionsTotal        metric.Int64Counter
	ResolutionFailuresTotal metric.Int64Counter

	// Authorization decision metrics
	DecisionsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ResolutionsTotal, _ = meter.Int64Counter(
		"recoup.auth.resolutions.total",
		metric.WithDescription("Total number of successful credential resolutions"),
		metric.WithUnit("{resolution}"),
	)

	m.ResolutionFailuresTotal, _ = meter.Int64Counter(
		"recoup.auth.resolution_failures.total",
		metric.WithDescription("Total number of credentials that resolved to no identity"),
		metric.WithUnit("{failure}"),
	)

	m.DecisionsTotal, _ = meter.Int64Counter(
		"recoup.auth.decisions.total",
		metric.WithDescription("Total number of authorization decisions"),
		metric.WithUnit("{decision}"),
	)

	return m
}

// RecordResolution records one credential resolution outcome.
func (m *Metrics) RecordResolution(ctx context.Context, ok bool) {
	if ok {
		m.ResolutionsTotal.Add(ctx, 1)
		return
	}
	m.ResolutionFailuresTotal.Add(ctx, 1)
}

// RecordDecision records one authorization decision outcome for the
// given resource kind ("account" or "artist").
func (m *Metrics) RecordDecision(ctx context.Context, resource string, allowed bool) {
	m.DecisionsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("resource", resource),
			attribute.Bool("allowed", allowed),
		),
	)
}
