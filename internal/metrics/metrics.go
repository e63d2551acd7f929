package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "contractor_payments",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractor_payments",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contractor_payments",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	payments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractor_payments",
			Subsystem: "ledger",
			Name:      "payments_total",
			Help:      "Job payment attempts by result.",
		},
		[]string{"result"},
	)

	deposits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractor_payments",
			Subsystem: "ledger",
			Name:      "deposits_total",
			Help:      "Deposit attempts by result.",
		},
		[]string{"result"},
	)

	transferred = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractor_payments",
			Subsystem: "ledger",
			Name:      "amount_total",
			Help:      "Money moved by successful operations.",
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		payments,
		deposits,
		transferred,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}

		httpInFlight.Inc()
		start := time.Now()
		c.Next()
		httpInFlight.Dec()

		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordPayment counts a payment attempt; amount is added only on success.
func RecordPayment(result string, amount float64) {
	payments.WithLabelValues(result).Inc()
	if result == "ok" {
		transferred.WithLabelValues("payment").Add(amount)
	}
}

// RecordDeposit counts a deposit attempt; amount is added only on success.
func RecordDeposit(result string, amount float64) {
	deposits.WithLabelValues(result).Inc()
	if result == "ok" {
		transferred.WithLabelValues("deposit").Add(amount)
	}
}
