// Package metrics exposes generation counters on a dedicated Prometheus
// registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/iconforge/model"
)

const namespace = "iconforge"

// Build modes.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// Error kinds.
const (
	KindNaming       = "naming"
	KindOptimization = "optimization"
	KindDuplicate    = "duplicate"
	KindIO           = "io"
)

// Recorder records generation metrics.
type Recorder struct {
	registry  *prometheus.Registry
	generated *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	icons     prometheus.Gauge
}

// New creates a Recorder with its own registry, including the Go runtime
// and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icons_generated_total",
			Help:      "Components generated, by icon type.",
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Generation failures, by error kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of full and incremental builds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"mode"}),
		icons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "manifest_icons",
			Help:      "Entries in the current manifest.",
		}),
	}
	r.registry.MustRegister(
		r.generated,
		r.errors,
		r.duration,
		r.icons,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// IconGenerated counts one generated component.
func (r *Recorder) IconGenerated(t model.IconType) {
	if r == nil {
		return
	}
	r.generated.WithLabelValues(string(t)).Inc()
}

// GenerationError counts one failure of the given kind.
func (r *Recorder) GenerationError(kind string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(kind).Inc()
}

// ObserveBuild records the duration of a build.
func (r *Recorder) ObserveBuild(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(mode).Observe(d.Seconds())
}

// SetManifestIcons sets the manifest size gauge.
func (r *Recorder) SetManifestIcons(n int) {
	if r == nil {
		return
	}
	r.icons.Set(float64(n))
}

// Registry returns the underlying registry, nil for a nil Recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
