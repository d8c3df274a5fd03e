package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
		m.ObserveGeneration(time.Second, errors.New("boom"))
		m.ParseRecovered()
		m.SessionStarted("interactive")
		m.QuestionAsked("success")
		m.SessionEnded()
		m.DocumentUploaded("rfp")
		m.OptimizationCompleted(true)
	})
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveGeneration(time.Second, nil)
	m.ObserveGeneration(time.Second, errors.New("timeout"))
	m.ObserveGeneration(time.Second, errors.New("timeout"))
	m.SessionStarted("degraded")
	m.OptimizationCompleted(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationCalls.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationCalls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Optimizations.WithLabelValues("generated")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.DocumentUploaded("proposal")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `proposal_analyzer_documents_uploaded_total{kind="proposal"} 1`)
}
