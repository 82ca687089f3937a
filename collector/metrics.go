package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fermentation_collector"

// Store write outcomes used as the result label
const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultError    = "error"
)

// Metrics holds the Prometheus metrics of the Collector
type Metrics struct {
	connections       prometheus.Counter
	activeConnections prometheus.Gauge
	readingsReceived  prometheus.Counter
	decodeErrors      prometheus.Counter
	storeWrites       *prometheus.CounterVec
	forwardErrors     *prometheus.CounterVec
}

// NewMetrics creates the Collector metrics and registers them when reg is
// not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_total",
			Help:      "Total accepted relay connections",
		}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_connections",
			Help:      "Relay connections currently being handled",
		}),
		readingsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "readings_received_total",
			Help:      "Records decoded into readings",
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decode_errors_total",
			Help:      "Lines that could not be decoded into a reading",
		}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_writes_total",
			Help:      "Store write attempts by result",
		}, []string{"result"}),
		forwardErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "forward_errors_total",
			Help:      "Failed forwards by forwarder",
		}, []string{"forwarder"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.connections,
			m.activeConnections,
			m.readingsReceived,
			m.decodeErrors,
			m.storeWrites,
			m.forwardErrors,
		)
	}

	return m
}
