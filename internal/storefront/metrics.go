package storefront

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	CartOps   *prometheus.CounterVec
	CartItems prometheus.Gauge
	Checkouts prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cart_operations_total",
				Help: "Cart mutations by operation",
			},
			[]string{"op"},
		),
		CartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Units currently in the cart",
		}),
		Checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Completed simulated checkouts",
		}),
	}

	reg.MustRegister(m.CartOps, m.CartItems, m.Checkouts)
	return m
}

func (m *Metrics) observe(op string, items int) {
	if m == nil {
		return
	}
	m.CartOps.WithLabelValues(op).Inc()
	m.CartItems.Set(float64(items))
}
