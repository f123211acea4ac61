package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Assembly outcomes recorded on the foodbank.basket.assembly.total counter
const (
	OutcomeAssembled = "assembled"
	OutcomeShortfall = "shortfall"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BasketMetrics records basket assembly activity and remaining stock
type BasketMetrics struct {
	assemblies       *Counter
	basketsAssembled *Counter
	missingFoods     *Counter
	duration         *Histogram
	lowStockFoods    *Gauge
	basketsRemaining *Gauge
}

// NewBasketMetrics creates the basket instruments on meter
func NewBasketMetrics(meter metric.Meter) (*BasketMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   BasketMetrics
		err error
	)
	if m.assemblies, err = NewCounter(meter, "foodbank.basket.assembly.total",
		"Basket assembly attempts by outcome", "{attempt}"); err != nil {
		return nil, err
	}
	if m.basketsAssembled, err = NewCounter(meter, "foodbank.basket.assembled.total",
		"Baskets assembled", "{basket}"); err != nil {
		return nil, err
	}
	if m.missingFoods, err = NewCounter(meter, "foodbank.basket.shortfall.foods",
		"Foods reported missing by rejected assemblies", "{food}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "foodbank.basket.assembly.duration",
		"Duration of successful basket assemblies", "s", AssemblyDurationBuckets...); err != nil {
		return nil, err
	}
	if m.lowStockFoods, err = NewGauge(meter, "foodbank.stock.low.foods",
		"Basket foods below the low stock threshold", "{food}"); err != nil {
		return nil, err
	}
	if m.basketsRemaining, err = NewGauge(meter, "foodbank.stock.baskets_remaining",
		"Baskets the remaining stock of a food can supply", "{basket}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordAssembled counts a committed batch
func (m *BasketMetrics) RecordAssembled(ctx context.Context, basketQuantity int, duration time.Duration) {
	m.assemblies.Inc(ctx, AttrOutcome.String(OutcomeAssembled))
	m.basketsAssembled.Add(ctx, int64(basketQuantity))
	m.duration.RecordDuration(ctx, duration)
}

// RecordShortfall counts an assembly rejected for missing stock
func (m *BasketMetrics) RecordShortfall(ctx context.Context, _ int, missingFoods int) {
	m.assemblies.Inc(ctx, AttrOutcome.String(OutcomeShortfall))
	m.missingFoods.Add(ctx, int64(missingFoods))
}

// RecordConflict counts an attempt that lost a concurrent stock update
func (m *BasketMetrics) RecordConflict(ctx context.Context) {
	m.assemblies.Inc(ctx, AttrOutcome.String(OutcomeConflict))
}

// RecordFailure counts an attempt that failed for any other reason
func (m *BasketMetrics) RecordFailure(ctx context.Context) {
	m.assemblies.Inc(ctx, AttrOutcome.String(OutcomeFailed))
}

// RecordLowStock publishes how many basket foods are below the threshold
func (m *BasketMetrics) RecordLowStock(ctx context.Context, lowFoods int) {
	m.lowStockFoods.Record(ctx, int64(lowFoods))
}

// RecordBasketsRemaining publishes how many baskets one food can still supply
func (m *BasketMetrics) RecordBasketsRemaining(ctx context.Context, foodID int64, name string, baskets int64) {
	m.basketsRemaining.Record(ctx, baskets, AttrFoodID.Int64(foodID), AttrFood.String(name))
}
