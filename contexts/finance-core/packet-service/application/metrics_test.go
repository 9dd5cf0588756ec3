package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	application "redpacket/contexts/finance-core/packet-service/application"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRejectionReason(t *testing.T) {
	cases := map[error]string{
		domainerrors.ErrInvalidSignature:                               "invalid_signature",
		domainerrors.ErrAlreadyClaimed:                                 "already_claimed",
		domainerrors.ErrNotExpired:                                     "not_expired",
		domainerrors.ErrInvalidMetadata:                                "invalid_input",
		fmt.Errorf("open native account: %w", domainerrors.ErrClosed): "closed",
		errors.New("connection reset"):                                 "internal",
	}
	for err, want := range cases {
		assert.Equal(t, want, application.RejectionReason(err), err.Error())
	}
}

func TestMetricsAreNilSafe(t *testing.T) {
	var metrics *application.Metrics
	assert.NotPanics(t, func() {
		metrics.RecordCommitted(context.Background(), "claim", "equal", 10)
		metrics.RecordRejected(context.Background(), "claim", domainerrors.ErrExpired)
	})

	metrics = application.NewMetrics(noop.NewMeterProvider())
	assert.NotPanics(t, func() {
		metrics.RecordCommitted(context.Background(), "reclaim", "random", 10)
		metrics.RecordRejected(context.Background(), "create", domainerrors.ErrInvalidAsset)
	})
}

func TestMetricsRecordIntoSDKProvider(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := application.NewMetrics(provider)
	metrics.RecordCommitted(ctx, "create", "equal", 300)
	metrics.RecordCommitted(ctx, "claim", "equal", 100)
	metrics.RecordCommitted(ctx, "claim", "equal", 100)
	metrics.RecordRejected(ctx, "claim", domainerrors.ErrAlreadyClaimed)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(1), counterValue(t, rm, "packet_operations_total", "operation", "create"))
	assert.Equal(t, int64(2), counterValue(t, rm, "packet_operations_total", "operation", "claim"))
	assert.Equal(t, int64(1), counterValue(t, rm, "packet_rejections_total", "reason", "already_claimed"))

	payouts := findMetric(t, rm, "packet_payout_units").Data.(metricdata.Histogram[float64])
	require.Len(t, payouts.DataPoints, 1)
	assert.Equal(t, uint64(2), payouts.DataPoints[0].Count)
	assert.Equal(t, float64(200), payouts.DataPoints[0].Sum)
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return metricdata.Metrics{}
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string, key string, value string) int64 {
	t.Helper()
	sum, ok := findMetric(t, rm, name).Data.(metricdata.Sum[int64])
	require.True(t, ok, name)
	var total int64
	for _, point := range sum.DataPoints {
		if v, ok := point.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += point.Value
		}
	}
	return total
}
