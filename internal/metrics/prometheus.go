package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viro_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viro_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// Pipeline metrics
	pipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viro_pipeline_runs_total",
			Help: "Total number of graph pipeline runs",
		},
		[]string{"source"},
	)

	pipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viro_pipeline_duration_seconds",
			Help:    "Graph pipeline duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	graphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viro_graph_edges",
			Help: "Number of edges in the most recent linkage graph",
		},
	)

	clustersDetected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viro_clusters",
			Help: "Number of clusters in the most recent run",
		},
	)

	alertsRaised = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viro_cluster_alerts",
			Help: "Number of alerting clusters in the most recent run",
		},
	)

	rankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viro_rank_requests_total",
			Help: "Total number of facility ranking requests",
		},
		[]string{"tier"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordPipelineRun records one graph pipeline run and its output sizes
func RecordPipelineRun(source string, duration time.Duration, edges, clusters, alerts int) {
	pipelineRuns.WithLabelValues(source).Inc()
	pipelineDuration.Observe(duration.Seconds())
	graphEdges.Set(float64(edges))
	clustersDetected.Set(float64(clusters))
	alertsRaised.Set(float64(alerts))
}

// RecordRankRequest records a facility ranking request
func RecordRankRequest(tier string) {
	if tier == "" {
		tier = "unassigned"
	}
	rankRequests.WithLabelValues(tier).Inc()
}
