package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"daily-challenge-service/internal/domain"
)

// Metrics records submission outcomes. It satisfies app.Recorder.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	scores      *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a dedicated registry together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daily_challenge",
			Name:      "submissions_total",
			Help:      "Daily challenge submissions segmented by type and outcome.",
		}, []string{"type", "outcome"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "daily_challenge",
			Name:      "submission_score",
			Help:      "Distribution of accepted total scores.",
			Buckets:   prometheus.LinearBuckets(0, 100, 11),
		}, []string{"type"}),
	}
	reg.MustRegister(
		m.submissions,
		m.scores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) SubmissionAccepted(t domain.ChallengeType, score float64) {
	m.submissions.WithLabelValues(t.String(), "accepted").Inc()
	m.scores.WithLabelValues(t.String()).Observe(score)
}

func (m *Metrics) SubmissionRejected(t domain.ChallengeType, reason string) {
	m.submissions.WithLabelValues(t.String(), reason).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
