// Package metrics exposes the prometheus instruments for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckinsTotal counts accepted check-ins by assigned status.
	CheckinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusattend_checkins_total",
		Help: "Accepted check-ins by assigned status.",
	}, []string{"status"})

	// CheckinRejections counts rejected check-ins by taxonomy code.
	CheckinRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusattend_checkin_rejections_total",
		Help: "Rejected check-ins by error code.",
	}, []string{"reason"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusattend_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// GinMiddleware records request durations per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
