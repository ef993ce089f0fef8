package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLearned(t *testing.T) {
	m := New()

	m.ObserveLearned("ok", 10*time.Millisecond)
	m.ObserveLearned("ok", 20*time.Millisecond)
	m.ObserveLearned("timeout", time.Second)

	if got := testutil.ToFloat64(m.LearnedTotal.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok outcomes, got %v", got)
	}
	if got := testutil.ToFloat64(m.LearnedTotal.WithLabelValues("timeout")); got != 1 {
		t.Fatalf("expected 1 timeout outcome, got %v", got)
	}
}

func TestObserveAnalysisAndRequest(t *testing.T) {
	m := New()

	m.ObserveAnalysis(66)
	m.ObserveRequest("/match-skills", http.StatusOK, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.AnalysesTotal); got != 1 {
		t.Fatalf("expected 1 analysis, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/match-skills", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLearned("ok", time.Millisecond)
	m.ObserveAnalysis(10)
	m.ObserveRequest("/", http.StatusOK, time.Millisecond)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveAnalysis(50)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "resumerise_analyses_total 1") {
		t.Fatalf("expected analyses counter in output:\n%s", rec.Body.String())
	}
}
