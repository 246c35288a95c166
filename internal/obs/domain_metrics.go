package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartReconcileTotal counts cart line reconciliation outcomes.
	CartReconcileTotal *prometheus.CounterVec
	// StockRejectionsTotal counts cart mutations rejected for exceeding stock.
	StockRejectionsTotal prometheus.Counter
	// TierRowsSkippedTotal counts malformed bulk tier rows skipped during resolution.
	TierRowsSkippedTotal prometheus.Counter
	// OrdersPlacedTotal counts checkout outcomes by payment mode.
	OrdersPlacedTotal *prometheus.CounterVec
	// OrderStatusTransitions counts admin order status changes.
	OrderStatusTransitions *prometheus.CounterVec
	// CheckoutDuration records checkout latency in milliseconds.
	CheckoutDuration prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartReconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_reconcile_total",
			Help:      "Count of cart line reconciliation outcomes.",
		}, []string{"result"})
		StockRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_stock_rejections_total",
			Help:      "Cart mutations rejected because the requested quantity exceeded stock.",
		})
		TierRowsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_tier_rows_skipped_total",
			Help:      "Malformed bulk tier rows skipped during price resolution.",
		})
		OrdersPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Count of checkout outcomes by payment mode.",
		}, []string{"payment_mode", "result"})
		OrderStatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Count of order status transitions applied by admins.",
		}, []string{"status"})
		CheckoutDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_ms",
			Help:      "Latency of checkout processing in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		})

		mustRegisterCollector(reg, CartReconcileTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartReconcileTotal = v
			}
		})
		mustRegisterCollector(reg, StockRejectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockRejectionsTotal = v
			}
		})
		mustRegisterCollector(reg, TierRowsSkippedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				TierRowsSkippedTotal = v
			}
		})
		mustRegisterCollector(reg, OrdersPlacedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersPlacedTotal = v
			}
		})
		mustRegisterCollector(reg, OrderStatusTransitions, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderStatusTransitions = v
			}
		})
		mustRegisterCollector(reg, CheckoutDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CheckoutDuration = v
			}
		})
	})
}

// ObserveCartReconcile records a reconciliation outcome ("persisted" or "removed").
func ObserveCartReconcile(result string) {
	if CartReconcileTotal != nil {
		CartReconcileTotal.WithLabelValues(result).Inc()
	}
}

// ObserveStockRejection records a mutation rejected for exceeding stock.
func ObserveStockRejection() {
	if StockRejectionsTotal != nil {
		StockRejectionsTotal.Inc()
	}
}

// ObserveTierRowsSkipped records malformed tier rows skipped for one product.
func ObserveTierRowsSkipped(n int) {
	if TierRowsSkippedTotal != nil && n > 0 {
		TierRowsSkippedTotal.Add(float64(n))
	}
}

// ObserveOrderPlaced records a checkout outcome for the given payment mode.
func ObserveOrderPlaced(paymentMode, result string) {
	if OrdersPlacedTotal != nil {
		OrdersPlacedTotal.WithLabelValues(paymentMode, result).Inc()
	}
}

// ObserveOrderStatus records an admin order status transition.
func ObserveOrderStatus(status string) {
	if OrderStatusTransitions != nil {
		OrderStatusTransitions.WithLabelValues(status).Inc()
	}
}

// ObserveCheckoutDuration records checkout latency.
func ObserveCheckoutDuration(ms float64) {
	if CheckoutDuration != nil {
		CheckoutDuration.Observe(ms)
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
