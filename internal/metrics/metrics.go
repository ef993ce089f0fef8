package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resumerise"

// Metrics holds the collectors exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AnalysesTotal   prometheus.Counter
	OverlapScore    prometheus.Histogram
	LearnedTotal    *prometheus.CounterVec
	LearnedDuration prometheus.Histogram
}

// New registers the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		AnalysesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of resume/job analyses",
			},
		),
		OverlapScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "overlap_score",
				Help:      "Distribution of overlap scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		LearnedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "learned_scores_total",
				Help:      "Total number of learned scoring attempts by outcome",
			},
			[]string{"outcome"},
		),
		LearnedDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "learned_score_duration_seconds",
				Help:      "Duration of learned scoring in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
		),
	}
}

// ObserveLearned records a learned scoring attempt.
func (m *Metrics) ObserveLearned(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LearnedTotal.WithLabelValues(outcome).Inc()
	m.LearnedDuration.Observe(d.Seconds())
}

// ObserveAnalysis records a finished analysis and its overlap score.
func (m *Metrics) ObserveAnalysis(score int) {
	if m == nil {
		return
	}
	m.AnalysesTotal.Inc()
	m.OverlapScore.Observe(float64(score))
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
