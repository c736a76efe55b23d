package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks checkout outcomes and image-host side effects.
type OrderMetrics struct {
	created         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	uploadFailures  prometheus.Counter
	cleanupFailures prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders persisted, by store backend.",
	}, []string{"store"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to"})
	uploadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_logo_upload_failures_total",
		Help: "Checkout attempts aborted by an image upload failure.",
	})
	cleanupFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_cleanup_failures_total",
		Help: "Hosted images that could not be removed.",
	})
	reg.MustRegister(created, transitions, uploadFailures, cleanupFailures)
	return &OrderMetrics{
		created:         created,
		transitions:     transitions,
		uploadFailures:  uploadFailures,
		cleanupFailures: cleanupFailures,
	}
}

func (m *OrderMetrics) IncCreated(store string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(store)).Inc()
}

func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) IncUploadFailure() {
	if m == nil || m.uploadFailures == nil {
		return
	}
	m.uploadFailures.Inc()
}

// AddCleanupFailures counts hosted images left behind after a delete.
func (m *OrderMetrics) AddCleanupFailures(n int) {
	if m == nil || m.cleanupFailures == nil || n <= 0 {
		return
	}
	m.cleanupFailures.Add(float64(n))
}
