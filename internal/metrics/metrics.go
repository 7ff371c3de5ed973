package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpause",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gpause",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Detection metrics
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpause",
		Name:      "analyses_total",
		Help:      "Track analyses by outcome",
	}, []string{"outcome"})

	pausesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpause",
		Name:      "pauses_detected_total",
		Help:      "Pauses found across all analyses",
	})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gpause",
		Name:      "analysis_duration_seconds",
		Help:      "Time spent parsing and scanning one track",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// Store metrics
	dbConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpause",
		Subsystem: "db",
		Name:      "conns_open",
		Help:      "Open database connections",
	})

	dbConnsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpause",
		Subsystem: "db",
		Name:      "conns_in_use",
		Help:      "Database connections currently in use",
	})

	dbConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpause",
		Subsystem: "db",
		Name:      "conns_idle",
		Help:      "Idle database connections",
	})
)

// ObserveAnalysis records one finished analysis.
func ObserveAnalysis(outcome string, pauses int, elapsed time.Duration) {
	analysesTotal.WithLabelValues(outcome).Inc()
	analysisDuration.Observe(elapsed.Seconds())
	if pauses > 0 {
		pausesDetected.Add(float64(pauses))
	}
}

// Middleware records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// UpdateDBMetrics copies connection pool stats into the db gauges.
func UpdateDBMetrics(stats sql.DBStats) {
	dbConnsOpen.Set(float64(stats.OpenConnections))
	dbConnsInUse.Set(float64(stats.InUse))
	dbConnsIdle.Set(float64(stats.Idle))
}
