package lightning

// metrics.go is a thin abstraction over Prometheus so a Table can be used
// with or without metrics. When the caller passes a *prometheus.Registry via
// WithMetrics, labeled metrics are created and registered; otherwise a noop
// sink is used and the hot path pays nothing for it.
//
// © 2025 Lightning authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is the internal interface abstracting the concrete backend
// (Prometheus vs noop). Not exposed outside the package.
type metricsSink interface {
	incResize()
	incTableFullRetry()
	incSentinelRetry()
	setCapacity(v uint64)
	setOccupation(v uint64)
}

type noopMetrics struct{}

func (noopMetrics) incResize()             {}
func (noopMetrics) incTableFullRetry()     {}
func (noopMetrics) incSentinelRetry()      {}
func (noopMetrics) setCapacity(uint64)     {}
func (noopMetrics) setOccupation(uint64)   {}

type promMetrics struct {
	resizes          prometheus.Counter
	tableFullRetries prometheus.Counter
	sentinelRetries  prometheus.Counter
	capacity         prometheus.Gauge
	occupation       prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		resizes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightning",
			Name:      "resizes_total",
			Help:      "Number of cooperative incremental resizes performed.",
		}),
		tableFullRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightning",
			Name:      "table_full_retries_total",
			Help:      "Number of times Insert observed ResTableFull and forced a resize retry.",
		}),
		sentinelRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightning",
			Name:      "sentinel_retries_total",
			Help:      "Number of times Insert observed a Sentinel and retried against the new chunk.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightning",
			Name:      "capacity",
			Help:      "Current slot capacity of the active chunk.",
		}),
		occupation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightning",
			Name:      "occupation",
			Help:      "Monotonic count of slots ever claimed in the active chunk.",
		}),
	}
	reg.MustRegister(pm.resizes, pm.tableFullRetries, pm.sentinelRetries, pm.capacity, pm.occupation)
	return pm
}

func (m *promMetrics) incResize()           { m.resizes.Inc() }
func (m *promMetrics) incTableFullRetry()   { m.tableFullRetries.Inc() }
func (m *promMetrics) incSentinelRetry()    { m.sentinelRetries.Inc() }
func (m *promMetrics) setCapacity(v uint64) { m.capacity.Set(float64(v)) }
func (m *promMetrics) setOccupation(v uint64) { m.occupation.Set(float64(v)) }

// newMetricsSink decides which implementation to use.
func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
