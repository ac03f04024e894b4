package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCommerceMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCommerceMetrics(reg)
	metrics.IncSync("cart", OutcomeSynced)
	metrics.IncSync("cart", OutcomeSynced)
	metrics.IncSync("wishlist", OutcomeFailed)
	metrics.ObserveSyncDuration("cart", 120*time.Millisecond)
	metrics.IncStoreFailure("cart", "save")
	metrics.IncPreviewFallback()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "commerce_sync_total", map[string]string{"collection": "cart", "outcome": OutcomeSynced}); err != nil {
		t.Fatalf("fetch sync: %v", err)
	} else if got != 2 {
		t.Fatalf("expected cart synced=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "commerce_sync_total", map[string]string{"collection": "wishlist", "outcome": OutcomeFailed}); err != nil {
		t.Fatalf("fetch sync failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected wishlist failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "commerce_local_store_failures_total", map[string]string{"collection": "cart", "op": "save"}); err != nil {
		t.Fatalf("fetch store failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected store failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "commerce_promotion_preview_fallback_total", nil); err != nil {
		t.Fatalf("fetch fallback: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fallback=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "commerce_sync_duration_seconds")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleSum() <= 0 {
		t.Fatal("expected sync duration to be recorded")
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var metrics *CommerceMetrics
	metrics.IncSync("cart", OutcomeSynced)
	metrics.IncStoreFailure("cart", "save")
	metrics.IncPreviewFallback()
	metrics.ObserveSyncDuration("cart", time.Second)

	NewCommerceMetrics(nil).IncPreviewFallback()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if value, ok := want[pair.GetName()]; ok && value == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
