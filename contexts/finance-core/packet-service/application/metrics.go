package application

import (
	"context"
	"errors"

	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records packet lifecycle counters. The zero value is usable and
// records nothing.
type Metrics struct {
	operations metric.Int64Counter
	rejections metric.Int64Counter
	payouts    metric.Float64Histogram
}

func NewMetrics(provider metric.MeterProvider) *Metrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("redpacket.packet_service")

	operations, err := meter.Int64Counter(
		"packet_operations_total",
		metric.WithDescription("Committed packet operations by kind"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		otel.Handle(err)
		operations = noop.Int64Counter{}
	}
	rejections, err := meter.Int64Counter(
		"packet_rejections_total",
		metric.WithDescription("Rejected packet operations by kind and reason"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		otel.Handle(err)
		rejections = noop.Int64Counter{}
	}
	payouts, err := meter.Float64Histogram(
		"packet_payout_units",
		metric.WithDescription("Units moved out of packet vaults per operation"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		otel.Handle(err)
		payouts = noop.Float64Histogram{}
	}

	return &Metrics{
		operations: operations,
		rejections: rejections,
		payouts:    payouts,
	}
}

func (m *Metrics) RecordCommitted(ctx context.Context, operation string, splitMode string, units uint64) {
	if m == nil || m.operations == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("split_mode", splitMode),
	)
	m.operations.Add(ctx, 1, attrs)
	if operation != "create" {
		m.payouts.Record(ctx, float64(units), attrs)
	}
}

func (m *Metrics) RecordRejected(ctx context.Context, operation string, err error) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", RejectionReason(err)),
	))
}

// RejectionReason maps domain errors to a bounded label set.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domainerrors.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, domainerrors.ErrFullyClaimed):
		return "fully_claimed"
	case errors.Is(err, domainerrors.ErrClosed):
		return "closed"
	case errors.Is(err, domainerrors.ErrExpired):
		return "expired"
	case errors.Is(err, domainerrors.ErrNotExpired):
		return "not_expired"
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domainerrors.ErrAlreadyWithdrawn):
		return "already_withdrawn"
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domainerrors.ErrPacketNotFound):
		return "not_found"
	case errors.Is(err, domainerrors.ErrPacketExists):
		return "exists"
	case errors.Is(err, domainerrors.ErrInvalidTotalNumber),
		errors.Is(err, domainerrors.ErrInvalidTotalAmount),
		errors.Is(err, domainerrors.ErrInvalidExpiryTime),
		errors.Is(err, domainerrors.ErrInvalidCreateTime),
		errors.Is(err, domainerrors.ErrInvalidIssuerKey),
		errors.Is(err, domainerrors.ErrInvalidMetadata),
		errors.Is(err, domainerrors.ErrInvalidAsset),
		errors.Is(err, domainerrors.ErrInvalidRequest):
		return "invalid_input"
	default:
		return "internal"
	}
}
