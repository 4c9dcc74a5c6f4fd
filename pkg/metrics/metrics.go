// Package metrics provides Prometheus observability metrics for the
// scheduling engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// PlacementsTotal tracks placement outcomes. The "placed" label value
// counts successful inserts; "rejected" counts refused attempts.
var PlacementsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engine",
	Name:      "placements_total",
	Help:      "Assignment placement attempts by outcome",
}, []string{"result"})

// BulkBatchesTotal tracks bulk placement batches by outcome.
var BulkBatchesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engine",
	Name:      "bulk_batches_total",
	Help:      "Bulk placement batches by outcome",
}, []string{"result"})

// BulkBatchSize tracks the number of placements per bulk batch.
var BulkBatchSize = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "engine",
	Name:      "bulk_batch_size",
	Help:      "Number of placements per bulk batch",
	Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
})

// CalendarBuildSeconds tracks time to assemble a calendar view.
var CalendarBuildSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "engine",
	Name:      "calendar_build_seconds",
	Help:      "Time taken to assemble a calendar view",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
}, []string{"granularity"})

// UtilizationPercent tracks the most recently reported schedule
// utilization. High values indicate capacity planning issues.
var UtilizationPercent = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "engine",
	Name:      "utilization_percent",
	Help:      "Percentage of slot capacity used in the last capacity report",
})
