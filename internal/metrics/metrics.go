// Package metrics records run statistics in a Prometheus registry and exports
// them for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "userdoc"

// Recorder holds the counters of a single run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	lookups        *prometheus.CounterVec
	attempts       prometheus.Counter
	lookupDuration prometheus.Histogram
	projects       *prometheus.CounterVec
	lines          *prometheus.CounterVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Identifier lookups by outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_attempts_total",
			Help:      "HTTP attempts made by the lookup client.",
		}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time spent resolving one identifier, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		projects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_total",
			Help:      "Processed projects by status.",
		}, []string{"status"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_rewritten_total",
			Help:      "Rewritten identifier lines by prior state.",
		}, []string{"state"}),
	}

	r.registry.MustRegister(r.lookups, r.attempts, r.lookupDuration, r.projects, r.lines)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Lookup records one resolved identifier.
func (r *Recorder) Lookup(outcome string, attempts int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(outcome).Inc()
	r.attempts.Add(float64(attempts))
	r.lookupDuration.Observe(elapsed.Seconds())
}

// Project records the final status of one project.
func (r *Recorder) Project(status string) {
	if r == nil {
		return
	}
	r.projects.WithLabelValues(status).Inc()
}

// LinesRewritten records n rewritten lines that were in the given state.
func (r *Recorder) LinesRewritten(state string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.lines.WithLabelValues(state).Add(float64(n))
}

// WriteTextfile writes the registry in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
