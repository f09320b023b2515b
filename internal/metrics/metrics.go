package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives accrual and persistence measurements.
type Recorder interface {
	ObserveEntry(project string, seconds int64)
	ObservePersistDuration(d time.Duration)
	SetTracking(active bool)
	Handler() http.Handler
}

type promRecorder struct {
	registry        *prometheus.Registry
	entriesTotal    *prometheus.CounterVec
	secondsTotal    *prometheus.CounterVec
	persistDuration prometheus.Histogram
	tracking        prometheus.Gauge
}

// New returns a prometheus backed Recorder on a private registry, or a no-op
// Recorder when disabled.
func New(enabled bool) Recorder {
	if !enabled {
		return noopRecorder{}
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &promRecorder{
		registry: reg,
		entriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ftt_entries_recorded_total",
			Help: "Number of time entries appended to the log",
		}, []string{"project"}),
		secondsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ftt_seconds_recorded_total",
			Help: "Seconds of active time appended to the log",
		}, []string{"project"}),
		persistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ftt_persist_duration_seconds",
			Help:    "Duration of log persist operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		tracking: f.NewGauge(prometheus.GaugeOpts{
			Name: "ftt_tracking_active",
			Help: "1 while a file is being timed",
		}),
	}
}

func (p *promRecorder) ObserveEntry(project string, seconds int64) {
	p.entriesTotal.WithLabelValues(project).Inc()
	p.secondsTotal.WithLabelValues(project).Add(float64(seconds))
}

func (p *promRecorder) ObservePersistDuration(d time.Duration) {
	p.persistDuration.Observe(d.Seconds())
}

func (p *promRecorder) SetTracking(active bool) {
	if active {
		p.tracking.Set(1)
		return
	}
	p.tracking.Set(0)
}

func (p *promRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

type noopRecorder struct{}

func (noopRecorder) ObserveEntry(_ string, _ int64)         {}
func (noopRecorder) ObservePersistDuration(_ time.Duration) {}
func (noopRecorder) SetTracking(_ bool)                     {}
func (noopRecorder) Handler() http.Handler                  { return http.NotFoundHandler() }
