package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/v1/products", http.StatusOK, 120*time.Millisecond)
	m.Observe(http.MethodGet, "/api/v1/products", http.StatusOK, 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/api/v1/products"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected requests=2, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/v1/products"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	m.IncCreated("sql")
	m.IncTransition("processing", "delivered")
	m.IncUploadFailure()
	m.AddCleanupFailures(2)
	m.AddCleanupFailures(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, _ := fetchCounterValue(mfs, "orders_created_total", "store", "sql"); got != 1 {
		t.Fatalf("expected created=1, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "order_status_transitions_total", "to", "delivered"); got != 1 {
		t.Fatalf("expected transition=1, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "image_cleanup_failures_total", "", ""); got != 2 {
		t.Fatalf("expected cleanup failures=2, got %f", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	var o *OrderMetrics
	o.IncCreated("sql")
	o.IncTransition("a", "b")
	o.IncUploadFailure()
	o.AddCleanupFailures(1)

	NewOrderMetrics(nil).IncCreated("mongo")
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewHTTPMetrics(reg).Observe(http.MethodPost, "/api/v1/orders", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || !strings.Contains(string(body), "http_requests_total") {
		t.Fatalf("unexpected metrics response %d: %s", rec.Code, body)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, lbl := range labels {
		if lbl.GetName() == name && lbl.GetValue() == value {
			return true
		}
	}
	return false
}
