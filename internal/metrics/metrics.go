// Package metrics records batch processing metrics in a prometheus registry
// and exports them in the node exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "pdfoutline"

// Outcome labels
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// Metrics holds the collectors of one batch run
type Metrics struct {
	registry *prometheus.Registry

	documents  *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	duration   prometheus.Histogram
	confidence prometheus.Histogram
	tables     prometheus.Counter
	sections   prometheus.Counter
}

// New creates a registry with every collector registered
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_failures_total",
			Help:      "Failed extraction attempts, by backend.",
		}, []string{"backend"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "Wall time spent on one document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Document confidence scores.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		tables: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_detected_total",
			Help:      "Tables detected across all documents.",
		}),
		sections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_detected_total",
			Help:      "Outline sections detected across all documents.",
		}),
	}
	m.registry.MustRegister(
		m.documents,
		m.fallbacks,
		m.duration,
		m.confidence,
		m.tables,
		m.sections,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Document records one processed document
func (m *Metrics) Document(outcome string, elapsed time.Duration, confidence float64, sections, tables int) {
	m.documents.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome != OutcomeFailed {
		m.confidence.Observe(confidence)
	}
	m.sections.Add(float64(sections))
	m.tables.Add(float64(tables))
}

// BackendFailure records one failed extraction attempt
func (m *Metrics) BackendFailure(backend string) {
	m.fallbacks.WithLabelValues(backend).Inc()
}

// WriteTextfile writes every metric to path, replacing it atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
