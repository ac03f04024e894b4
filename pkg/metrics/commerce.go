package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSynced  = "synced"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// CommerceMetrics records the absorbed failures and sync outcomes of the
// commerce engine. A nil *CommerceMetrics is a valid no-op recorder.
type CommerceMetrics struct {
	syncTotal        *prometheus.CounterVec
	syncDuration     *prometheus.HistogramVec
	storeFailures    *prometheus.CounterVec
	previewFallbacks prometheus.Counter
}

// NewCommerceMetrics registers the commerce collectors on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	syncTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_sync_total",
		Help: "Local to remote sync attempts by collection and outcome.",
	}, []string{"collection", "outcome"})
	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commerce_sync_duration_seconds",
		Help:    "Duration of remote merge calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
	storeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_local_store_failures_total",
		Help: "Absorbed local store read/write failures.",
	}, []string{"collection", "op"})
	previewFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commerce_promotion_preview_fallback_total",
		Help: "Quotes priced without a promotion preview.",
	})
	reg.MustRegister(syncTotal, syncDuration, storeFailures, previewFallbacks)
	return &CommerceMetrics{
		syncTotal:        syncTotal,
		syncDuration:     syncDuration,
		storeFailures:    storeFailures,
		previewFallbacks: previewFallbacks,
	}
}

// IncSync counts one sync attempt for collection with the given outcome.
func (c *CommerceMetrics) IncSync(collection, outcome string) {
	if c == nil || c.syncTotal == nil {
		return
	}
	c.syncTotal.WithLabelValues(normalizeLabel(collection), normalizeLabel(outcome)).Inc()
}

// ObserveSyncDuration records how long a remote merge took.
func (c *CommerceMetrics) ObserveSyncDuration(collection string, duration time.Duration) {
	if c == nil || c.syncDuration == nil {
		return
	}
	c.syncDuration.WithLabelValues(normalizeLabel(collection)).Observe(duration.Seconds())
}

// IncStoreFailure counts an absorbed local store failure.
func (c *CommerceMetrics) IncStoreFailure(collection, op string) {
	if c == nil || c.storeFailures == nil {
		return
	}
	c.storeFailures.WithLabelValues(normalizeLabel(collection), normalizeLabel(op)).Inc()
}

// IncPreviewFallback counts a quote priced without a promotion preview.
func (c *CommerceMetrics) IncPreviewFallback() {
	if c == nil || c.previewFallbacks == nil {
		return
	}
	c.previewFallbacks.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
