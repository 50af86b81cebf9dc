package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/rgwnotify/core/hub"
)

const namespace = "rgwnotify"

// Metrics owns a private registry and implements the recorder interfaces of
// the hub, the enrichment pipeline and the dispatcher. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	eventsReceived *prometheus.CounterVec
	lookupsFailed  prometheus.Counter
	indexFailures  *prometheus.CounterVec
	broadcasts     prometheus.Counter
	deliveries     *prometheus.CounterVec
	subscribers    prometheus.Gauge
	rejected       *prometheus.CounterVec
}

// New registers all collectors on a fresh registry. Process and Go runtime
// collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Object storage events received on the publish endpoint, by kind.",
		}, []string{"kind"}),
		lookupsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_failed_total",
			Help:      "Metadata lookups that failed for created objects.",
		}),
		indexFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_failures_total",
			Help:      "Failed index operations, by operation.",
		}, []string{"op"}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Documents broadcast to the local subscriber registry.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Per-subscriber frame deliveries, by result.",
		}, []string{"result"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Currently registered subscribers.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_rejected_total",
			Help:      "Subscription attempts rejected during validation, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsReceived,
		m.lookupsFailed,
		m.indexFailures,
		m.broadcasts,
		m.deliveries,
		m.subscribers,
		m.rejected,
	)

	for _, r := range []hub.DeliveryResult{hub.DeliverySent, hub.DeliveryDropped, hub.DeliveryFailed} {
		m.deliveries.WithLabelValues(string(r))
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the exposition format for the private registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) EventReceived(kind string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(kind).Inc()
}

func (m *Metrics) LookupFailed() {
	if m == nil {
		return
	}
	m.lookupsFailed.Inc()
}

// IndexFailed counts a failed "insert" or "delete".
func (m *Metrics) IndexFailed(op string) {
	if m == nil {
		return
	}
	m.indexFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

func (m *Metrics) Delivery(result hub.DeliveryResult) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(string(result)).Inc()
}

func (m *Metrics) Subscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

// SubscriptionRejected counts a refused subscription. Reasons come from the
// endpoint package.
func (m *Metrics) SubscriptionRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
