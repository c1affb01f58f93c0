/*
 * Copyright (C) 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not
 * use this file except in compliance with the License. You may obtain a copy of
 * the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
 * WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
 * License for the specific language governing permissions and limitations under
 * the License.
 */

package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	instrumentationName = "github.com/GoogleCloudPlatform/dataproc-templates/go"

	attributeKeyTemplate = attribute.Key("template")
	attributeKeyMethod   = attribute.Key("method")
	attributeKeyTarget   = attribute.Key("target")
	attributeKeyStatus   = attribute.Key("status")

	metricExportInterval = 10 * time.Second
)

// OTelConfig holds the resolved telemetry settings
type OTelConfig struct {
	TracerEndpoint   string
	MetricEndpoint   string
	ServiceName      string
	ServiceVersion   string
	ProjectID        string
	OTELEnabled      bool
	TraceSampleRatio float64
}

// OpenTelemetry wraps the tracer and meter used by the templates. A disabled instance hands out noop spans and
// drops metrics, so callers never need to check whether telemetry is on.
type OpenTelemetry struct {
	Config         *OTelConfig
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	logger         *zap.Logger
	requestCount   metric.Int64Counter
	requestLatency metric.Int64Histogram
}

// NewOpenTelemetry sets up trace and metric providers. The returned shutdown func flushes both.
func NewOpenTelemetry(ctx context.Context, config *OTelConfig, logger *zap.Logger) (*OpenTelemetry, func(context.Context) error, error) {
	otelInst := &OpenTelemetry{Config: config, logger: logger}

	if !config.OTELEnabled {
		otelInst.TracerProvider = tracenoop.NewTracerProvider()
		otelInst.MeterProvider = metricnoop.NewMeterProvider()
		if err := otelInst.initInstruments(); err != nil {
			return nil, nil, err
		}
		return otelInst, func(context.Context) error { return nil }, nil
	}

	res, err := buildResource(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	var shutdownFuncs []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdownFuncs {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}

	tp, err := initTracerProvider(ctx, config, res)
	if err != nil {
		return nil, nil, err
	}
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otelInst.TracerProvider = tp

	if config.MetricEndpoint != "" {
		mp, err := initMeterProvider(ctx, config, res)
		if err != nil {
			_ = shutdown(ctx)
			return nil, nil, err
		}
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
		otel.SetMeterProvider(mp)
		otelInst.MeterProvider = mp
	} else {
		otelInst.MeterProvider = metricnoop.NewMeterProvider()
	}

	if err := otelInst.initInstruments(); err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}

	logger.Info("OpenTelemetry enabled",
		zap.String("service", config.ServiceName),
		zap.String("traceEndpoint", config.TracerEndpoint),
		zap.String("metricEndpoint", config.MetricEndpoint),
		zap.Float64("sampleRatio", config.TraceSampleRatio))
	return otelInst, shutdown, nil
}

func buildResource(ctx context.Context, config *OTelConfig) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}
	return res, nil
}

// initTracerProvider exports to the configured OTLP endpoint, or straight to Cloud Trace when none is set
func initTracerProvider(ctx context.Context, config *OTelConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	if config.TracerEndpoint != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(config.TracerEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	} else {
		exp, err := texporter.New(texporter.WithProjectID(config.ProjectID))
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud trace exporter: %w", err)
		}
		exporter = exp
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSampleRatio))),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	), nil
}

func initMeterProvider(ctx context.Context, config *OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(config.MetricEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricExportInterval))),
	), nil
}

func (o *OpenTelemetry) initInstruments() error {
	o.Tracer = o.TracerProvider.Tracer(instrumentationName)
	o.Meter = o.MeterProvider.Meter(instrumentationName)

	var err error
	o.requestCount, err = o.Meter.Int64Counter("dataproc_templates/operation_count",
		metric.WithDescription("Number of template operations, by method and outcome"))
	if err != nil {
		return fmt.Errorf("failed to create operation counter: %w", err)
	}
	o.requestLatency, err = o.Meter.Int64Histogram("dataproc_templates/operation_latency",
		metric.WithDescription("Latency of template operations"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("failed to create latency histogram: %w", err)
	}
	return nil
}

func (o *OpenTelemetry) StartSpan(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return o.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *OpenTelemetry) EndSpan(span trace.Span) {
	span.End()
}

func (o *OpenTelemetry) RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordMetrics counts one finished operation and its latency
func (o *OpenTelemetry) RecordMetrics(ctx context.Context, method string, startTime time.Time, template string, target string, err error) {
	status := "OK"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attributeKeyMethod.String(method),
		attributeKeyTemplate.String(template),
		attributeKeyTarget.String(target),
		attributeKeyStatus.String(status),
	)
	o.requestCount.Add(ctx, 1, attrs)
	o.requestLatency.Record(ctx, time.Since(startTime).Milliseconds(), attrs)
}

// AddAnnotation adds an event to the span in ctx, if there is one
func AddAnnotation(ctx context.Context, event string) {
	trace.SpanFromContext(ctx).AddEvent(event)
}

// Attributes commonly attached to template spans
func TemplateAttribute(name string) attribute.KeyValue {
	return attributeKeyTemplate.String(name)
}

func TargetAttribute(target string) attribute.KeyValue {
	return attributeKeyTarget.String(target)
}
