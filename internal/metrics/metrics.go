package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codearena"

// Upstream call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeNetwork     = "network_error"
	OutcomeProtocol    = "protocol_error"
	OutcomeApplication = "application_error"
)

// Metrics holds the portal's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	submissions      *prometheus.CounterVec
	staleResponses   *prometheus.CounterVec
	jobs             *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests made to the challenge API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of challenge API requests by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Solution submissions by result.",
		}, []string{"result"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request for the same view was issued.",
		}, []string{"view"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Background jobs by name and outcome.",
		}, []string{"job", "outcome"}),
	}
	m.registry.MustRegister(
		m.upstreamRequests,
		m.upstreamDuration,
		m.submissions,
		m.staleResponses,
		m.jobs,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) CountSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) CountStale(view string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(view).Inc()
}

func (m *Metrics) CountJob(job, outcome string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(job, outcome).Inc()
}

// UpstreamRequests exposes the counter for tests.
func (m *Metrics) UpstreamRequests() *prometheus.CounterVec { return m.upstreamRequests }

// Submissions exposes the counter for tests.
func (m *Metrics) Submissions() *prometheus.CounterVec { return m.submissions }

// StaleResponses exposes the counter for tests.
func (m *Metrics) StaleResponses() *prometheus.CounterVec { return m.staleResponses }

// Jobs exposes the counter for tests.
func (m *Metrics) Jobs() *prometheus.CounterVec { return m.jobs }
