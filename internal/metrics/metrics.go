// Package metrics exposes Prometheus instruments for the analyzer. All
// methods are safe on a nil *Metrics so collaborators can run without them.
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

const namespace = "proposal_analyzer"

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	GenerationCalls    *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	ParseRecoveries    prometheus.Counter

	SessionsStarted *prometheus.CounterVec
	Questions       *prometheus.CounterVec
	SessionsEnded   prometheus.Counter

	DocumentsUploaded *prometheus.CounterVec
	Optimizations     *prometheus.CounterVec
}

// New registers every instrument on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		GenerationCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_calls_total",
			Help:      "Generator attempts by outcome",
		}, []string{"outcome"}),
		GenerationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of single generator attempts",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		ParseRecoveries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_recoveries_total",
			Help:      "Generated analyses replaced by a synthesized structure",
		}),
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Analysis sessions started, by resulting state",
		}, []string{"result"}),
		Questions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_questions_total",
			Help:      "Questions asked in sessions, by outcome",
		}, []string{"outcome"}),
		SessionsEnded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Sessions that reached the ended state",
		}),
		DocumentsUploaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_uploaded_total",
			Help:      "Uploaded documents by kind",
		}, []string{"kind"}),
		Optimizations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rfp_optimizations_total",
			Help:      "RFP optimization analyses, by source",
		}, []string{"source"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveGeneration(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.GenerationCalls.WithLabelValues(outcome).Inc()
	m.GenerationDuration.Observe(d.Seconds())
}

func (m *Metrics) ParseRecovered() {
	if m == nil {
		return
	}
	m.ParseRecoveries.Inc()
}

func (m *Metrics) SessionStarted(result string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(result).Inc()
}

func (m *Metrics) QuestionAsked(outcome string) {
	if m == nil {
		return
	}
	m.Questions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.SessionsEnded.Inc()
}

func (m *Metrics) DocumentUploaded(kind string) {
	if m == nil {
		return
	}
	m.DocumentsUploaded.WithLabelValues(kind).Inc()
}

func (m *Metrics) OptimizationCompleted(synthesized bool) {
	if m == nil {
		return
	}
	source := "generated"
	if synthesized {
		source = "heuristic"
	}
	m.Optimizations.WithLabelValues(source).Inc()
}
