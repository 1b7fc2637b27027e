// Package metrics provides Prometheus instrumentation for walletguard.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletguard",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "walletguard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AnalysesTotal counts wallet analyses by final decision.
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletguard",
			Name:      "analyses_total",
			Help:      "Total wallet analyses by decision.",
		},
		[]string{"decision"},
	)

	// InferenceDuration observes model inference latency.
	InferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "walletguard",
			Name:      "inference_duration_seconds",
			Help:      "GNN inference duration in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// RiskScores observes the distribution of returned risk scores.
	RiskScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "walletguard",
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// UnknownWalletsTotal counts analyze requests for addresses absent from
	// the training graph.
	UnknownWalletsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "walletguard",
			Name:      "unknown_wallets_total",
			Help:      "Total analyze requests rejected for unknown wallet addresses.",
		},
	)

	// FreezeActionsTotal counts dispatched freeze actions by result.
	FreezeActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletguard",
			Name:      "freeze_actions_total",
			Help:      "Total freeze actions dispatched, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AnalysesTotal,
		InferenceDuration,
		RiskScores,
		UnknownWalletsTotal,
		FreezeActionsTotal,
	)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
