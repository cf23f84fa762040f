package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialhub_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_like_toggles_total",
		Help: "Like toggles by target kind and resulting state.",
	}, []string{"kind", "result"})

	OutboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialhub_outbox_published_total",
		Help: "Outbox events delivered to the sink.",
	})

	OutboxFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialhub_outbox_failed_total",
		Help: "Outbox deliveries that failed and were released for retry.",
	})

	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialhub_chat_messages_total",
		Help: "Chat messages published.",
	})
)

// Middleware 记录每个路由的请求数与耗时
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
