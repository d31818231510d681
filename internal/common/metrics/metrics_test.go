package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOUIssues_Set(t *testing.T) {
	OUIssues.WithLabelValues("US1", "EBS", "stuck_lpn").Set(2)

	if got := testutil.ToFloat64(OUIssues.WithLabelValues("US1", "EBS", "stuck_lpn")); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
}

func TestAdapterCalls_Increment(t *testing.T) {
	counter := AdapterCalls.WithLabelValues("test_capability", "failed")
	before := testutil.ToFloat64(counter)

	counter.Inc()

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected %v, got %v", before+1, got)
	}
}

func TestSinkDeliveries_Labels(t *testing.T) {
	for _, result := range []string{"sent", "failed", "skipped"} {
		SinkDeliveries.WithLabelValues("teams", result).Inc()
	}

	if got := testutil.ToFloat64(SinkDeliveries.WithLabelValues("teams", "skipped")); got < 1 {
		t.Errorf("Expected skipped counter >= 1, got %v", got)
	}
}

func TestCircuitBreakerStateConstants(t *testing.T) {
	if CircuitBreakerClosed != 0 || CircuitBreakerOpen != 1 || CircuitBreakerHalfOpen != 2 {
		t.Error("Circuit breaker state constants changed")
	}
}

func TestPushFrom(t *testing.T) {
	var calls atomic.Int32
	var path atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "test"})
	reg.MustRegister(g)
	g.Set(1)

	if err := PushFrom(context.Background(), reg, server.URL, "wms_monitor"); err != nil {
		t.Fatalf("PushFrom failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("Expected 1 push, got %d", calls.Load())
	}
	if p, _ := path.Load().(string); !strings.Contains(p, "/job/wms_monitor") {
		t.Errorf("Expected job path, got %q", p)
	}
}

func TestPushFrom_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if err := PushFrom(context.Background(), prometheus.NewRegistry(), server.URL, "wms_monitor"); err == nil {
		t.Error("Expected error for 500 response")
	}
}
