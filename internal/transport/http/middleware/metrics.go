package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	reqTotal *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPMetrics reg 为 nil 时不注册（测试用）；engine 标签区分 api / organizer
func NewHTTPMetrics(reg prometheus.Registerer, engine string) *HTTPMetrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"engine": engine}
	return &HTTPMetrics{
		reqTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Count of HTTP requests",
			ConstLabels: labels,
		}, []string{"path", "method", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Latency of HTTP requests",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"path", "method"}),
	}
}

func Metrics(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.reqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
