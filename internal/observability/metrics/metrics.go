// Package metrics exposes Prometheus instrumentation for the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// HTTPMetrics owns its own registry so tests can build isolated instances
// without tripping duplicate-registration panics.
type HTTPMetrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	recalculations *prometheus.CounterVec
}

func New() *HTTPMetrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printshop",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "printshop",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	recalculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printshop",
		Subsystem: "jobmetrics",
		Name:      "recalculations_total",
		Help:      "Full metrics-table recalculations, by outcome.",
	}, []string{"outcome"})

	registry.MustRegister(
		requests,
		duration,
		recalculations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &HTTPMetrics{
		registry:       registry,
		requests:       requests,
		duration:       duration,
		recalculations: recalculations,
	}
}

// ObserveRecalculation counts one full recalculation run.
func (m *HTTPMetrics) ObserveRecalculation(outcome string) {
	m.recalculations.WithLabelValues(outcome).Inc()
}

// Middleware records a counter and latency sample for every request.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the scrape endpoint for this instance's registry.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
