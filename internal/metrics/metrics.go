// Package metrics exposes Prometheus collectors for the HTTP API, frame
// computation and the websocket stream.
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
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daynight_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "daynight_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	frameComputeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "daynight_frame_compute_seconds",
			Help:    "Time spent computing one sky frame.",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		},
	)

	streamConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "daynight_stream_connections",
			Help: "Open websocket frame streams.",
		},
	)

	streamRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daynight_stream_rejected_total",
			Help: "Stream connections refused, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(frameComputeSeconds)
	prometheus.MustRegister(streamConnections)
	prometheus.MustRegister(streamRejectedTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// normalizeRoute maps a matched gin route pattern to a metric label.
// Unmatched requests (bots, typos) collapse to "other".
func normalizeRoute(fullPath string) string {
	if fullPath == "" {
		return "other"
	}
	return fullPath
}

// Middleware records request count and duration for each request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := normalizeRoute(c.FullPath())
		code := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(path, c.Request.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveFrame records the duration of one frame computation.
func ObserveFrame(d time.Duration) {
	frameComputeSeconds.Observe(d.Seconds())
}

// StreamOpened increments the open stream gauge.
func StreamOpened() { streamConnections.Inc() }

// StreamClosed decrements the open stream gauge.
func StreamClosed() { streamConnections.Dec() }

// StreamRejected counts a refused stream connection.
func StreamRejected(reason string) {
	streamRejectedTotal.WithLabelValues(reason).Inc()
}
