// Package metrics provides the Prometheus registry and instrument sets for the
// chat service. All metrics are registry-scoped so tests can use throwaway
// registries without name collisions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatrelay"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ChatMetrics holds Prometheus metrics for chat connections and fan-out.
type ChatMetrics struct {
	ConnectionsActive    prometheus.Gauge
	ConnectionsTotal     prometheus.Counter
	ConnectionDuration   prometheus.Histogram
	MessagesReceived     prometheus.Counter
	DecodeErrors         prometheus.Counter
	MessagesBroadcast    prometheus.Counter
	BroadcastDrops       prometheus.Counter
	MessageWriteDuration prometheus.Histogram
}

// NewChatMetrics creates and registers chat metrics on the given registry.
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Number of currently connected chat clients.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connections_total",
			Help:      "Total number of chat connections accepted.",
		}),
		ConnectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connection_duration_seconds",
			Help:      "Lifetime of chat connections in seconds.",
			Buckets:   []float64{1, 10, 60, 300, 900, 3600, 14400},
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_received_total",
			Help:      "Total number of successfully decoded inbound messages.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "message_decode_errors_total",
			Help:      "Total number of inbound frames dropped as undecodable.",
		}),
		MessagesBroadcast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_broadcast_total",
			Help:      "Total number of messages enqueued to receiving clients.",
		}),
		BroadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "broadcast_drops_total",
			Help:      "Total number of broadcast enqueues dropped because the receiver was gone.",
		}),
		MessageWriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "message_write_duration_seconds",
			Help:      "Duration of WebSocket message writes in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.ConnectionDuration,
		m.MessagesReceived,
		m.DecodeErrors,
		m.MessagesBroadcast,
		m.BroadcastDrops,
		m.MessageWriteDuration,
	)
	return m
}
