package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByOutcome(t *testing.T, m metricdata.Metrics) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		outcome, _ := dp.Attributes.Value(AttrOutcome)
		out[outcome.AsString()] += dp.Value
	}
	return out
}

func newTestBasketMetrics(t *testing.T) (*BasketMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewBasketMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func TestNewBasketMetrics_NilMeter(t *testing.T) {
	_, err := NewBasketMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestBasketMetrics_Outcomes(t *testing.T) {
	m, reader := newTestBasketMetrics(t)
	ctx := context.Background()

	m.RecordAssembled(ctx, 3, 40*time.Millisecond)
	m.RecordAssembled(ctx, 2, 10*time.Millisecond)
	m.RecordShortfall(ctx, 3, 2)
	m.RecordConflict(ctx)
	m.RecordFailure(ctx)

	metrics := collect(t, reader)

	assert.Equal(t, map[string]int64{
		OutcomeAssembled: 2,
		OutcomeShortfall: 1,
		OutcomeConflict:  1,
		OutcomeFailed:    1,
	}, sumByOutcome(t, metrics["foodbank.basket.assembly.total"]))

	baskets := metrics["foodbank.basket.assembled.total"].Data.(metricdata.Sum[int64])
	require.Len(t, baskets.DataPoints, 1)
	assert.Equal(t, int64(5), baskets.DataPoints[0].Value)

	missing := metrics["foodbank.basket.shortfall.foods"].Data.(metricdata.Sum[int64])
	require.Len(t, missing.DataPoints, 1)
	assert.Equal(t, int64(2), missing.DataPoints[0].Value)

	duration := metrics["foodbank.basket.assembly.duration"].Data.(metricdata.Histogram[float64])
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(2), duration.DataPoints[0].Count)
}

func TestBasketMetrics_LowStockGauges(t *testing.T) {
	m, reader := newTestBasketMetrics(t)
	ctx := context.Background()

	m.RecordLowStock(ctx, 2)
	m.RecordBasketsRemaining(ctx, 1, "Rice", 3)
	m.RecordBasketsRemaining(ctx, 2, "Beans", 0)

	metrics := collect(t, reader)

	low := metrics["foodbank.stock.low.foods"].Data.(metricdata.Gauge[int64])
	require.Len(t, low.DataPoints, 1)
	assert.Equal(t, int64(2), low.DataPoints[0].Value)

	remaining := metrics["foodbank.stock.baskets_remaining"].Data.(metricdata.Gauge[int64])
	byFood := make(map[int64]int64)
	for _, dp := range remaining.DataPoints {
		id, _ := dp.Attributes.Value(attribute.Key("food_id"))
		byFood[id.AsInt64()] = dp.Value
	}
	assert.Equal(t, map[int64]int64{1: 3, 2: 0}, byFood)
}
