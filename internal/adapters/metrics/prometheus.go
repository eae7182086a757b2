// Package metrics collects run metrics with the Prometheus client and
// writes them in the textfile format, for pickup by a node exporter on the
// cluster host.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is a ports.RunMetrics backed by a private Prometheus registry.
type Recorder struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	wait     prometheus.Gauge
	path     string
}

// NewRecorder creates a Recorder. When path is set Flush writes there;
// constLabels are attached to every series (typically pipeline and run).
func NewRecorder(path string, constLabels map[string]string) *Recorder {
	labels := prometheus.Labels(constLabels)
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		path:     path,
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "actor_phase_steps_total",
			Help:        "Step dispatches per phase and result.",
			ConstLabels: labels,
		}, []string{"phase", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "actor_phase_duration_seconds",
			Help:        "Time spent in each phase across all steps.",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 1, 10, 60, 300, 900, 3600, 4 * 3600, 12 * 3600},
		}, []string{"phase"}),
		wait: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "actor_wait_units",
			Help:        "Jobs and files awaited to completion during the run.",
			ConstLabels: labels,
		}),
	}
	r.registry.MustRegister(r.steps, r.duration, r.wait)
	return r
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.duration.WithLabelValues(phase).Observe(d.Seconds())
}

func (r *Recorder) CountStep(phase, result string) {
	r.steps.WithLabelValues(phase, result).Inc()
}

func (r *Recorder) AddWaitUnits(n int) {
	r.wait.Add(float64(n))
}

// Flush writes the textfile. Without a path it does nothing.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path == "" {
		return nil
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

var _ ports.RunMetrics = (*Recorder)(nil)
