package view

import "github.com/prometheus/client_golang/prometheus"

// metrics tracks session lifecycle counts on a registry-owned prometheus
// registry.
type metrics struct {
	registry *prometheus.Registry

	opened        prometheus.Counter
	closed        prometheus.Counter
	active        prometheus.Gauge
	revealed      prometheus.Counter
	startFailures prometheus.Counter
}

func newMetrics(namespace string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Total number of graph view sessions created",
		}),
		closed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Total number of graph view sessions disposed",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live graph view sessions",
		}),
		revealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panels_revealed_total",
			Help:      "Total number of requests answered by revealing an existing panel",
		}),
		startFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_start_failures_total",
			Help:      "Total number of embedded server start failures",
		}),
	}
	m.registry.MustRegister(m.opened, m.closed, m.active, m.revealed, m.startFailures)
	return m
}
