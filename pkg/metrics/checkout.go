package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records cart reconciliation and order submission outcomes.
// A nil receiver or unregistered metrics are safe no-ops so callers never
// need to branch on whether metrics are wired.
type CheckoutMetrics struct {
	resolveDuration *prometheus.HistogramVec
	reconcileDrops  *prometheus.CounterVec
	submissions     *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	resolveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_resolve_duration_seconds",
		Help:    "Duration of catalog product resolutions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reconcileDrops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_reconcile_drops",
		Help: "Cart line items dropped during reconciliation.",
	}, []string{"reason"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions",
		Help: "Order transaction submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(resolveDuration, reconcileDrops, submissions)
	return &CheckoutMetrics{
		resolveDuration: resolveDuration,
		reconcileDrops:  reconcileDrops,
		submissions:     submissions,
	}
}

// ObserveResolve records the duration of a single catalog lookup.
func (c *CheckoutMetrics) ObserveResolve(outcome string, duration time.Duration) {
	if c == nil || c.resolveDuration == nil {
		return
	}
	c.resolveDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncReconcileDrop counts a line item pruned from the cart.
func (c *CheckoutMetrics) IncReconcileDrop(reason string) {
	if c == nil || c.reconcileDrops == nil {
		return
	}
	c.reconcileDrops.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncSubmission counts an order submission attempt by outcome.
func (c *CheckoutMetrics) IncSubmission(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
