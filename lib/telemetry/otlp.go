package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type ConnConfig struct {
	// endpoint to export to via grpc
	GrpcEndpoint string `json:"grpc_endpoint"`
	// endpoint to export to via http, ignored when GrpcEndpoint is set
	HttpEndpoint string `json:"http_endpoint"`
	// headers to attach to every export request, typically auth
	Headers map[string]string `json:"headers"`
}

type Config struct {
	Traces  ConnConfig `json:"traces"`
	Metrics ConnConfig `json:"metrics"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config Config) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error

	switch {
	case config.Traces.GrpcEndpoint != "":
		slog.Info("initializing otlp trace exporter", "protocol", "grpc", "endpoint", config.Traces.GrpcEndpoint)
		ctx, cancel := context.WithTimeout(ctx, time.Second*3)
		defer cancel()
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(config.Traces.GrpcEndpoint),
			otlptracegrpc.WithHeaders(config.Traces.Headers),
		)
	case config.Traces.HttpEndpoint != "":
		slog.Info("initializing otlp trace exporter", "protocol", "http", "endpoint", config.Traces.HttpEndpoint)
		ctx, cancel := context.WithTimeout(ctx, time.Second*3)
		defer cancel()
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(config.Traces.HttpEndpoint),
			otlptracehttp.WithHeaders(config.Traces.Headers),
		)
	default:
		return nil, fmt.Errorf("no trace endpoint provided")
	}
	if err != nil {
		return nil, err
	}

	provider := trace.NewTracerProvider(
		trace.WithResource(r),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(time.Second)),
	)
	return provider, nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config Config) (*metric.MeterProvider, error) {
	var exporter metric.Exporter
	var err error

	switch {
	case config.Metrics.GrpcEndpoint != "":
		slog.Info("initializing otlp metric exporter", "protocol", "grpc", "endpoint", config.Metrics.GrpcEndpoint)
		ctx, cancel := context.WithTimeout(ctx, time.Second*3)
		defer cancel()
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(config.Metrics.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(config.Metrics.Headers),
		)
	case config.Metrics.HttpEndpoint != "":
		slog.Info("initializing otlp metric exporter", "protocol", "http", "endpoint", config.Metrics.HttpEndpoint)
		ctx, cancel := context.WithTimeout(ctx, time.Second*3)
		defer cancel()
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(config.Metrics.HttpEndpoint),
			otlpmetrichttp.WithHeaders(config.Metrics.Headers),
		)
	default:
		return nil, fmt.Errorf("no metric endpoint provided")
	}
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(
		metric.WithResource(r),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
	)
	return provider, nil
}
