package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records per-route request counts and latencies.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "countryatlas",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "countryatlas",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware instruments every request.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// RefreshMetrics tracks refresh pipeline outcomes by stage.
type RefreshMetrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewRefreshMetrics() *RefreshMetrics {
	return &RefreshMetrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "countryatlas",
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Refresh runs by outcome and failing stage.",
		}, []string{"outcome", "stage"}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "countryatlas",
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "End-to-end refresh duration.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
}

func (m *RefreshMetrics) ObserveSuccess(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("success", "").Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *RefreshMetrics) ObserveFailure(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("failure", stage).Inc()
	m.duration.Observe(elapsed.Seconds())
}
