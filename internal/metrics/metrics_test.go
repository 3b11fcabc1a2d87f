package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncTransition(t *testing.T) {
	before := testutil.ToFloat64(transitions.WithLabelValues("a", "b", "advanced"))
	IncTransition("a", "b", "advanced")
	IncTransition("a", "b", "advanced")

	if got := testutil.ToFloat64(transitions.WithLabelValues("a", "b", "advanced")); got != before+2 {
		t.Errorf("transitions = %v, want %v", got, before+2)
	}
}

func TestObserveSweep_EmptyStatus(t *testing.T) {
	before := testutil.ToFloat64(sweepRuns.WithLabelValues("unknown"))
	ObserveSweep("", 0.1)

	if got := testutil.ToFloat64(sweepRuns.WithLabelValues("unknown")); got != before+1 {
		t.Errorf("sweepRuns{unknown} = %v, want %v", got, before+1)
	}
}

func TestHandler(t *testing.T) {
	IncStoreQueryFailure("primerrecordatorio")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "reminder_store_query_failures_total") {
		t.Error("メトリクス出力に reminder_store_query_failures_total が含まれていない")
	}
}
