package tasks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the driver collectors. Build it once per registry.
type Metrics struct {
	enqueued   *prometheus.CounterVec
	completed  *prometheus.CounterVec
	failed     *prometheus.CounterVec
	queueDepth prometheus.Gauge
	active     prometheus.Gauge
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launcherd",
				Subsystem: "tasks",
				Name:      "jobs_enqueued_total",
				Help:      "Total number of jobs submitted to the queue",
			},
			[]string{"kind"},
		),
		completed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launcherd",
				Subsystem: "tasks",
				Name:      "jobs_completed_total",
				Help:      "Total number of jobs that reached the finished status",
			},
			[]string{"kind"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launcherd",
				Subsystem: "tasks",
				Name:      "jobs_failed_total",
				Help:      "Total number of abandoned jobs",
			},
			[]string{"kind", "reason"},
		),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launcherd",
			Subsystem: "tasks",
			Name:      "queue_depth",
			Help:      "Jobs waiting behind the active one",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launcherd",
			Subsystem: "tasks",
			Name:      "active_jobs",
			Help:      "Jobs currently running (0 or 1)",
		}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "launcherd",
				Subsystem: "tasks",
				Name:      "job_duration_seconds",
				Help:      "Time from resolve to the terminal event",
				Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600, 10800},
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.enqueued, m.completed, m.failed, m.queueDepth, m.active, m.duration)
	}
	return m
}

func (m *Metrics) jobEnqueued(k Kind) {
	if m == nil {
		return
	}
	m.enqueued.WithLabelValues(string(k)).Inc()
}

func (m *Metrics) jobCompleted(k Kind, since time.Time) {
	if m == nil {
		return
	}
	m.completed.WithLabelValues(string(k)).Inc()
	m.duration.WithLabelValues(string(k)).Observe(time.Since(since).Seconds())
}

func (m *Metrics) jobFailed(k Kind, reason string, since time.Time) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(string(k), reason).Inc()
	if !since.IsZero() {
		m.duration.WithLabelValues(string(k)).Observe(time.Since(since).Seconds())
	}
}

func (m *Metrics) setQueue(depth, active int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
	m.active.Set(float64(active))
}
