package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order materialization outcomes.
type CheckoutMetrics struct {
	ordersCreated *prometheus.CounterVec
	failures      *prometheus.CounterVec
	orderValue    prometheus.Histogram
	pointsDebited prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Successfully materialized orders.",
	}, []string{"dine_in"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts aborted, labelled by error code.",
	}, []string{"code"})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_value_paise",
		Help:    "Grand total of materialized orders in paise.",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
	})
	pointsDebited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reward_points_debited_total",
		Help: "Loyalty points debited through checkout.",
	})
	reg.MustRegister(ordersCreated, failures, orderValue, pointsDebited)
	return &CheckoutMetrics{
		ordersCreated: ordersCreated,
		failures:      failures,
		orderValue:    orderValue,
		pointsDebited: pointsDebited,
	}
}

// ObserveOrder records one materialized order.
func (m *CheckoutMetrics) ObserveOrder(dineIn bool, totalPaise int64, pointsDebited int) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	label := "false"
	if dineIn {
		label = "true"
	}
	m.ordersCreated.WithLabelValues(label).Inc()
	m.orderValue.Observe(float64(totalPaise))
	if pointsDebited > 0 {
		m.pointsDebited.Add(float64(pointsDebited))
	}
}

// IncFailure counts one aborted checkout by error code.
func (m *CheckoutMetrics) IncFailure(code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
