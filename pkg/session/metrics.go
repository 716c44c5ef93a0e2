package session

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsNamespace = "sessionkit"
	metricsSubsystem = "session"
)

// Metrics holds the collectors updated by the manager and the persistence loop.
type Metrics struct {
	Writes        prometheus.Counter
	WriteFailures prometheus.Counter
	Deletes       prometheus.Counter
	Evictions     prometheus.Counter
	Collected     prometheus.Counter
	Corrupt       prometheus.Counter
	Reloaded      prometheus.Counter
	Live          prometheus.Gauge
	PassDuration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "file_writes_total",
			Help:      "Session files written by persistence passes.",
		}),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "file_write_failures_total",
			Help:      "Session file writes or deletes that failed and will be retried on the next pass.",
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "file_deletes_total",
			Help:      "Session files removed for destroyed or collected sessions.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "evictions_total",
			Help:      "Inactive sessions dropped from memory with their file kept.",
		}),
		Collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "collected_total",
			Help:      "Sessions destroyed by garbage collection.",
		}),
		Corrupt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "corrupt_files_total",
			Help:      "Unreadable session files removed while loading.",
		}),
		Reloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "reloaded_total",
			Help:      "Sessions loaded back from disk.",
		}),
		Live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "live",
			Help:      "Sessions held in memory after the last persistence pass.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "persist_pass_duration_seconds",
			Help:      "Duration of persistence passes.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Writes,
			m.WriteFailures,
			m.Deletes,
			m.Evictions,
			m.Collected,
			m.Corrupt,
			m.Reloaded,
			m.Live,
			m.PassDuration,
		)
	}

	return m
}
