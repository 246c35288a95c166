package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/backend-mandi/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("mandi", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204"))
	if total != 1 {
		t.Fatalf("expected counter to be 1, got %v", total)
	}

	samples := testutil.CollectAndCount(metrics.ReqDur)
	if samples == 0 {
		t.Fatalf("expected histogram sample")
	}

	if metrics.InFlight != nil {
		if val := testutil.ToFloat64(metrics.InFlight); val != 0 {
			t.Fatalf("expected no in-flight requests, got %v", val)
		}
	}
}

func TestDomainMetricsHelpers(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("mandi", registry)

	obs.ObserveCartReconcile("persisted")
	obs.ObserveCartReconcile("persisted")
	obs.ObserveCartReconcile("removed")
	obs.ObserveStockRejection()
	obs.ObserveTierRowsSkipped(3)
	obs.ObserveTierRowsSkipped(0)
	obs.ObserveOrderPlaced("COD", "placed")

	if got := testutil.ToFloat64(obs.CartReconcileTotal.WithLabelValues("persisted")); got != 2 {
		t.Fatalf("expected 2 persisted reconciles, got %v", got)
	}
	if got := testutil.ToFloat64(obs.CartReconcileTotal.WithLabelValues("removed")); got != 1 {
		t.Fatalf("expected 1 removed reconcile, got %v", got)
	}
	if got := testutil.ToFloat64(obs.StockRejectionsTotal); got != 1 {
		t.Fatalf("expected 1 stock rejection, got %v", got)
	}
	if got := testutil.ToFloat64(obs.TierRowsSkippedTotal); got != 3 {
		t.Fatalf("expected 3 skipped tier rows, got %v", got)
	}
	if got := testutil.ToFloat64(obs.OrdersPlacedTotal.WithLabelValues("COD", "placed")); got != 1 {
		t.Fatalf("expected 1 placed order, got %v", got)
	}
}
