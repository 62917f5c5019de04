// Package metrics collects operation metrics for the translation layer.
//
// The facade records every public operation through a Recorder. The
// Prometheus implementation exposes counters and duration histograms; the
// nop implementation makes instrumentation free when metrics are disabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder observes completed operations.
//
// errCode is the empty string on success, otherwise a stable error
// category name (e.g. "not_found", "io_error"). Implementations must be
// safe for concurrent use.
type Recorder interface {
	Observe(op string, duration time.Duration, errCode string)
}

// nopRecorder discards all observations.
type nopRecorder struct{}

func (nopRecorder) Observe(string, time.Duration, string) {}

// Nop returns a recorder that discards everything.
func Nop() Recorder {
	return nopRecorder{}
}

// Prometheus is a Recorder backed by a dedicated Prometheus registry.
type Prometheus struct {
	registry  *prometheus.Registry
	ops       *prometheus.CounterVec
	durations *prometheus.HistogramVec
	errors    *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry under the given
// metric namespace.
func NewPrometheus(namespace string) *Prometheus {
	registry := prometheus.NewRegistry()

	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of translation-layer operations by type.",
	}, []string{"op"})

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of translation-layer operations by type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Total number of failed operations by type and error category.",
	}, []string{"op", "code"})

	registry.MustRegister(ops, durations, errs)

	return &Prometheus{
		registry:  registry,
		ops:       ops,
		durations: durations,
		errors:    errs,
	}
}

// Observe implements Recorder.
func (p *Prometheus) Observe(op string, duration time.Duration, errCode string) {
	p.ops.WithLabelValues(op).Inc()
	p.durations.WithLabelValues(op).Observe(duration.Seconds())
	if errCode != "" {
		p.errors.WithLabelValues(op, errCode).Inc()
	}
}

// Handler returns an HTTP handler serving the recorder's registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
