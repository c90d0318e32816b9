package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/luxe/internal/config"
)

func TestBuild_Disabled(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{ServiceName: "luxe"}, nil)
	require.NoError(t, err)

	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	assert.Nil(t, mgr.MetricsHandler())
	assert.NotNil(t, mgr.Meter("test"))
	assert.NotNil(t, mgr.Tracer("test"))

	_, err = mgr.Collect(context.Background())
	assert.ErrorIs(t, err, ErrMetricsNotCollectable)
	assert.NoError(t, mgr.Shutdown(context.Background()))
}

func TestBuild_MemoryMetrics(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{
		ServiceName:     "luxe",
		EnableMetrics:   true,
		MetricsExporter: "memory",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

	counter, err := mgr.Meter("test").Int64Counter("orders.placed")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rm, err := mgr.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestBuild_UnknownExportersAreDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mgr, err := Build(context.Background(), config.Observability{
		EnableTracing:   true,
		TraceExporter:   "jaeger",
		EnableMetrics:   true,
		MetricsExporter: "statsd",
	}, zap.New(core))
	require.NoError(t, err)

	assert.False(t, mgr.TracingEnabled())
	assert.False(t, mgr.MetricsEnabled())
	assert.Equal(t, 1, logs.FilterMessage("unsupported trace exporter; tracing disabled").Len())
	assert.Equal(t, 1, logs.FilterMessage("unsupported metrics exporter; metrics disabled").Len())
}

func TestBuild_OTLPRequiresEndpoint(t *testing.T) {
	_, err := Build(context.Background(), config.Observability{
		EnableTracing: true,
		TraceExporter: "otlp",
	}, nil)
	assert.ErrorContains(t, err, "OBS_OTLP_ENDPOINT")
}
