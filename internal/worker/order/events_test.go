package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/luxe/internal/messaging"
)

func setup(t *testing.T) (messaging.Handler, *observer.ObservedLogs, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	events, err := provider.Meter("test").Int64Counter("orders.events")
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	return newHandler(zap.New(core), events), logs, reader
}

func message(t *testing.T, e messaging.OrderEvent) messaging.Message {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return messaging.Message{Topic: "orders", Key: e.Key(), Value: payload}
}

func total(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var n int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					n += dp.Value
				}
			}
		}
	}
	return n
}

func TestHandler_StatusChanged(t *testing.T) {
	handler, logs, reader := setup(t)

	err := handler(context.Background(), message(t, messaging.OrderEvent{
		Type:           messaging.EventOrderStatusChanged,
		OrderID:        7,
		Number:         "ORD-20261015-ABC123",
		Status:         "approved",
		PreviousStatus: "requested",
		Total:          "130.00",
		Items:          2,
		OccurredAt:     time.Now().UTC(),
	}))
	require.NoError(t, err)

	entries := logs.FilterMessage("order status changed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "requested", entries[0].ContextMap()["previous_status"])
	assert.Equal(t, "ORD-20261015-ABC123", entries[0].ContextMap()["order_number"])
	assert.Equal(t, int64(1), total(t, reader))
}

func TestHandler_Created(t *testing.T) {
	handler, logs, reader := setup(t)

	require.NoError(t, handler(context.Background(), message(t, messaging.OrderEvent{
		Type: messaging.EventOrderCreated, OrderID: 1, Status: "requested",
	})))
	assert.Equal(t, 1, logs.FilterMessage("order placed").Len())
	assert.Equal(t, int64(1), total(t, reader))
}

func TestHandler_DropsUndecodable(t *testing.T) {
	handler, logs, reader := setup(t)

	err := handler(context.Background(), messaging.Message{Topic: "orders", Value: []byte("{not json")})
	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("dropping undecodable order event").Len())
	assert.Zero(t, total(t, reader))
}
