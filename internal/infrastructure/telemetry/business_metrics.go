package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const defaultCollectInterval = 5 * time.Minute

// BusinessMetrics tracks checkout, order lifecycle, coupon and catalogue health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	ordersPlacedTotal      *Counter
	orderValueTotal        *Counter
	orderTransitionsTotal  *Counter
	checkoutRejectedTotal  *Counter
	couponRedemptionsTotal *Counter
	creditNotesTotal       *Counter

	openOrders         *Gauge
	outOfStockProducts *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	storeProvider StoreMetricsProvider
}

// StoreMetricsProvider supplies per-store snapshots for the gauges.
type StoreMetricsProvider interface {
	// OpenOrdersByStore counts orders that are neither delivered nor cancelled
	OpenOrdersByStore(ctx context.Context) (map[uuid.UUID]int64, error)
	// OutOfStockByStore counts listed products with zero stock
	OutOfStockByStore(ctx context.Context) (map[uuid.UUID]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StoreProvider StoreMetricsProvider
}

// NewBusinessMetrics creates the business instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		storeProvider: cfg.StoreProvider,
	}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.ordersPlacedTotal, "grocer_orders_placed_total", "Total number of orders placed", "{orders}"},
		{&bm.orderValueTotal, "grocer_order_value_paise_total", "Total value of placed orders in paise", "{paise}"},
		{&bm.orderTransitionsTotal, "grocer_order_transitions_total", "Order status transitions by target status", "{transitions}"},
		{&bm.checkoutRejectedTotal, "grocer_checkout_rejected_total", "Checkouts rejected before an order was created", "{checkouts}"},
		{&bm.couponRedemptionsTotal, "grocer_coupon_redemptions_total", "Coupon redemption attempts by outcome", "{redemptions}"},
		{&bm.creditNotesTotal, "grocer_credit_notes_issued_total", "Total number of credit notes issued", "{notes}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	bm.openOrders, err = NewGauge(cfg.Meter, "grocer_orders_open", "Orders awaiting fulfilment", "{orders}")
	if err != nil {
		return nil, err
	}
	bm.outOfStockProducts, err = NewGauge(cfg.Meter, "grocer_products_out_of_stock", "Active products with zero stock", "{products}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderPlaced records a successful checkout and its grand total.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, storeID uuid.UUID, paymentMethod string, total decimal.Decimal) {
	store := AttrStoreID.String(storeID.String())
	bm.ordersPlacedTotal.Inc(ctx, store, AttrPaymentMethod.String(paymentMethod))
	bm.orderValueTotal.Add(ctx, total.Shift(2).Round(0).IntPart(), store)
}

// RecordOrderTransition records an order moving to status.
func (bm *BusinessMetrics) RecordOrderTransition(ctx context.Context, status string) {
	bm.orderTransitionsTotal.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordCheckoutRejected records a checkout refused with the given error code.
func (bm *BusinessMetrics) RecordCheckoutRejected(ctx context.Context, reason string) {
	bm.checkoutRejectedTotal.Inc(ctx, AttrRejectReason.String(reason))
}

// CouponOutcome labels a redemption attempt.
type CouponOutcome string

const (
	CouponOutcomeRedeemed CouponOutcome = "redeemed"
	CouponOutcomeRejected CouponOutcome = "rejected"
	CouponOutcomeReleased CouponOutcome = "released"
)

// RecordCouponRedemption records a redemption attempt for code.
func (bm *BusinessMetrics) RecordCouponRedemption(ctx context.Context, code string, outcome CouponOutcome) {
	bm.couponRedemptionsTotal.Inc(ctx, AttrCouponCode.String(code), AttrOutcome.String(string(outcome)))
}

// RecordCreditNoteIssued records a credit note raised for a store.
func (bm *BusinessMetrics) RecordCreditNoteIssued(ctx context.Context, storeID uuid.UUID) {
	bm.creditNotesTotal.Inc(ctx, AttrStoreID.String(storeID.String()))
}

// StartPeriodicCollection refreshes the store gauges every interval until
// Stop is called or ctx ends. Only the first call starts a collector.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = defaultCollectInterval
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectStoreMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectStoreMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectStoreMetrics(ctx context.Context) {
	if bm.storeProvider == nil {
		return
	}

	open, err := bm.storeProvider.OpenOrdersByStore(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect open orders", zap.Error(err))
	}
	for storeID, n := range open {
		bm.openOrders.Record(ctx, n, AttrStoreID.String(storeID.String()))
	}

	empty, err := bm.storeProvider.OutOfStockByStore(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect out-of-stock products", zap.Error(err))
	}
	for storeID, n := range empty {
		bm.outOfStockProducts.Record(ctx, n, AttrStoreID.String(storeID.String()))
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
