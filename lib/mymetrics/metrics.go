package mymetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopcheckout"

type GatewayMetrics struct {
	Calls     *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewGatewayMetrics(registerer prometheus.Registerer) *GatewayMetrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "Total number of payment gateway calls.",
	}, []string{"provider", "operation", "result"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "call_duration_ms",
		Help:      "Payment gateway call latency in milliseconds.",
		Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"provider", "operation"})

	registerer.MustRegister(calls, latency)
	return &GatewayMetrics{Calls: calls, LatencyMS: latency}
}

type CheckoutMetrics struct {
	Transitions *prometheus.CounterVec
	Orders      prometheus.Counter
}

func NewCheckoutMetrics(registerer prometheus.Registerer) *CheckoutMetrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "session_transitions_total",
		Help:      "Checkout session state transitions by target state.",
	}, []string{"state"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "orders_committed_total",
		Help:      "Orders committed by checkout sessions.",
	})

	registerer.MustRegister(transitions, orders)
	return &CheckoutMetrics{Transitions: transitions, Orders: orders}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
