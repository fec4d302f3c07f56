package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		GatewayRequests,
		GatewayDuration,
		Callbacks,
	)
}

var (
	// result: ok|fail
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zarinpal_gateway_requests_total",
			Help: "Zarinpal WebGate calls by method, result and status code.",
		},
		[]string{"method", "result", "status"},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zarinpal_gateway_request_duration_seconds",
			Help:    "Duration of Zarinpal WebGate calls in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	// result: verified|failed|canceled
	Callbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zarinpal_callbacks_total",
			Help: "Payment callbacks received from Zarinpal by outcome.",
		},
		[]string{"result"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveGatewayCall(method string, ok bool, status int, elapsed time.Duration) {
	result := "fail"
	if ok {
		result = "ok"
	}
	GatewayRequests.WithLabelValues(norm(method), result, strconv.Itoa(status)).Inc()
	GatewayDuration.WithLabelValues(norm(method)).Observe(elapsed.Seconds())
}

func IncCallback(result string) {
	Callbacks.WithLabelValues(norm(result)).Inc()
}
