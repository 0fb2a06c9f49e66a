package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the HTTP surface.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadpulse_http_requests_total",
			Help: "HTTP requests by method, path, action and status.",
		}, []string{"method", "path", "action", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadpulse_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// actionKey is set by the dispatcher so metrics can distinguish the POST
// actions multiplexed onto a single route.
const actionKey = "metrics.action"

// SetAction tags the current request with its dispatched action.
func SetAction(c *gin.Context, action string) {
	c.Set(actionKey, action)
}

// Middleware records request counts and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		action := c.GetString(actionKey)
		m.requestsTotal.WithLabelValues(
			c.Request.Method,
			c.Request.URL.Path,
			action,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(
			c.Request.Method,
			c.Request.URL.Path,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
