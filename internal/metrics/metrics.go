// Package metrics exposes Prometheus instrumentation for the trip planner.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "circuit_planner"

// Plan outcomes
const (
	OutcomeRail     = "rail"
	OutcomeWalkOnly = "walk_only"
	OutcomeError    = "error"
)

// Recorder owns a private registry so tests and multiple servers never collide
type Recorder struct {
	registry *prometheus.Registry

	plans           *prometheus.CounterVec
	planDuration    *prometheus.HistogramVec
	liveFailures    prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	networkStations prometheus.Gauge
}

// NewRecorder creates a recorder and registers all collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trip_plans_total",
			Help:      "Trip plans served, by planner source and outcome.",
		}, []string{"source", "outcome"}),
		planDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trip_plan_duration_seconds",
			Help:      "Time spent producing a trip plan, by planner source.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2, 5},
		}, []string{"source"}),
		liveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_planner_failures_total",
			Help:      "Live planner calls that failed and fell back to the offline planner.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		networkStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_stations",
			Help:      "Candidate entry stations in the loaded network.",
		}),
	}

	r.registry.MustRegister(
		r.plans,
		r.planDuration,
		r.liveFailures,
		r.httpRequests,
		r.httpDuration,
		r.networkStations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObservePlan records one served plan
func (r *Recorder) ObservePlan(source, outcome string, elapsed time.Duration) {
	r.plans.WithLabelValues(source, outcome).Inc()
	r.planDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// LivePlannerFailed counts a failed live planner call
func (r *Recorder) LivePlannerFailed() {
	r.liveFailures.Inc()
}

// SetNetworkStations publishes the size of the loaded network
func (r *Recorder) SetNetworkStations(n int) {
	r.networkStations.Set(float64(n))
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Middleware tracks request count and latency per matched route
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
