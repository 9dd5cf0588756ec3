package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
)

// NewMeterProvider builds the process meter provider. A non-empty endpoint
// adds a periodic OTLP/gRPC push; extra readers are attached as given.
func NewMeterProvider(
	ctx context.Context,
	serviceName string,
	process string,
	endpoint string,
	readers ...sdkmetric.Reader,
) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{
		sdkmetric.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.process", process),
		)),
	}
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// Install builds the meter provider and registers it as the global provider.
func Install(ctx context.Context, serviceName string, process string, endpoint string) (*sdkmetric.MeterProvider, error) {
	provider, err := NewMeterProvider(ctx, serviceName, process, endpoint)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(provider)
	return provider, nil
}
