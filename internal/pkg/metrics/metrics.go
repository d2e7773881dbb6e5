package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// Client (dispatcher) metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoapi",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Logical requests completed, by endpoint path and outcome",
	}, []string{"path", "outcome"})

	AttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoapi",
		Subsystem: "client",
		Name:      "attempts_total",
		Help:      "Individual network attempts, by endpoint path",
	}, []string{"path"})

	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoapi",
		Subsystem: "client",
		Name:      "retries_total",
		Help:      "Attempts beyond the first, by endpoint path",
	}, []string{"path"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoapi",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Wall time from dispatch to terminal state",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"path", "outcome"})

	LimiterWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geoapi",
		Subsystem: "client",
		Name:      "limiter_wait_seconds",
		Help:      "Time spent waiting for a rate limiter permit",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// Proxy HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoapi",
		Subsystem: "proxy",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed by the proxy",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoapi",
		Subsystem: "proxy",
		Name:      "request_duration_seconds",
		Help:      "Proxy HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})
)

// ObserveRequest records a completed logical request on the client side.
func ObserveRequest(path, outcome string, elapsed time.Duration) {
	RequestsTotal.WithLabelValues(path, outcome).Inc()
	RequestDuration.WithLabelValues(path, outcome).Observe(elapsed.Seconds())
}

// Middleware records proxy request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
