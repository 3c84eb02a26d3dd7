package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the HTTP instruments plus the banner outcome counter. Banner
// outcomes are labeled served/suppressed/rate_limited so quota gating is
// visible separately from plain traffic.
type Metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	bannerOutcomes *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		bannerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "banner_requests_total",
			Help: "Banner endpoint outcomes.",
		}, []string{"outcome"}),
	}
	prometheus.MustRegister(m.requests, m.duration, m.bannerOutcomes)
	return m
}

// GinMiddleware records request counts and latency. The registered route
// pattern is used as the label so path parameters do not explode cardinality.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) BannerOutcome(outcome string) {
	if m == nil {
		return
	}
	m.bannerOutcomes.WithLabelValues(outcome).Inc()
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
