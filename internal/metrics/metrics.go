package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roomrelay"

var (
	// ConnectionsActive is the number of open websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Open websocket connections.",
	})

	// InboundEvents counts accepted inbound events by event name.
	InboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inbound_events_total",
		Help:      "Inbound events handed to the relay, by event name.",
	}, []string{"event"})

	// InboundDropped counts inbound frames dropped before reaching the relay.
	InboundDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inbound_dropped_total",
		Help:      "Inbound frames dropped before reaching the relay, by reason.",
	}, []string{"reason"})

	// OutboundDropped counts events not queued because a recipient's buffer was full.
	OutboundDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbound_dropped_total",
		Help:      "Outbound events dropped because the recipient buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
