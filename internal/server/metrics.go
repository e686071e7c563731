package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mpavel/diffscope/internal/analyze"
)

// metrics instruments the review endpoints. Each server owns a private
// registry so repeated construction (tests, embedding) never collides.
type metrics struct {
	registry *prometheus.Registry
	analyses *prometheus.CounterVec
	findings *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diffscope_analyses_total",
			Help: "Analysis runs by outcome.",
		}, []string{"outcome"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diffscope_findings_total",
			Help: "Findings emitted, by severity.",
		}, []string{"severity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diffscope_analysis_duration_seconds",
			Help:    "Wall time of a full analysis run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.analyses, m.findings, m.duration)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observe(report *analyze.Report, err error, elapsed time.Duration) {
	if err != nil {
		m.analyses.WithLabelValues("malformed").Inc()
		return
	}
	m.analyses.WithLabelValues("ok").Inc()
	m.duration.Observe(elapsed.Seconds())
	m.findings.WithLabelValues("info").Add(float64(report.Summary.Info))
	m.findings.WithLabelValues("warning").Add(float64(report.Summary.Warning))
	m.findings.WithLabelValues("error").Add(float64(report.Summary.Error))
}
