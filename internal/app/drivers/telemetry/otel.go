package telemetry

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewTracerProvider installs the global tracer provider and propagators.
// The returned func flushes and stops the exporter.
func NewTracerProvider(ctx context.Context, driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) func(context.Context) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !driverConfig.Otel.Enabled {
		return func(context.Context) error { return nil }
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(driverConfig.Otel.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(3*time.Second),
	)
	if err != nil {
		log.Printf("Failed to create otlp exporter, tracing disabled: %s", err.Error())
		return func(context.Context) error { return nil }
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", constvars.AppName),
			attribute.String("service.version", internalConfig.App.Version),
			attribute.String("deployment.environment", internalConfig.App.Env),
		),
	)
	if err != nil {
		log.Printf("Failed to build otel resource, tracing disabled: %s", err.Error())
		return func(context.Context) error { return nil }
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(driverConfig.Otel.SampleRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	log.Println("Successfully initialized otel tracer provider")
	return tracerProvider.Shutdown
}
