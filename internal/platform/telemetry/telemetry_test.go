package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMeterProviderFeedsAttachedReader(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider, err := NewMeterProvider(ctx, "redpacket", "api", "", reader)
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	counter, err := provider.Meter("test").Int64Counter("ticks")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	name, ok := rm.Resource.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "redpacket", name.AsString())

	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestInstallRegistersGlobalProvider(t *testing.T) {
	previous := otel.GetMeterProvider()
	defer otel.SetMeterProvider(previous)

	provider, err := Install(context.Background(), "redpacket", "worker", "")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()
	assert.Same(t, provider, otel.GetMeterProvider())
}
