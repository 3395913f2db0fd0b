package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "mueblix"

// Metrics is safe to use through a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	RemoteRequests *prometheus.CounterVec
	Orders         *prometheus.CounterVec
	CartItems      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Calls made to the remote storefront API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_submissions_total",
			Help:      "Order submissions by result.",
		}, []string{"result"}),
		CartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_items",
			Help:      "Entries currently in the cart.",
		}),
	}
	reg.MustRegister(m.RemoteRequests, m.Orders, m.CartItems)
	return m
}

func (m *Metrics) ObserveRemote(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ObserveOrder(result string) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(result).Inc()
}

func (m *Metrics) SetCartItems(n int) {
	if m == nil {
		return
	}
	m.CartItems.Set(float64(n))
}
