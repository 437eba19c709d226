package trace

import (
	"Perish/config"
	"Perish/pkg/log"
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

// Init 初始化全局 TracerProvider，返回关闭函数；未开启时返回空操作
func Init(ctx context.Context, conf *config.Config) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if conf.Trace == nil || !conf.Trace.Enabled {
		return noop
	}
	endpoint := conf.Trace.Endpoint
	if endpoint == "" {
		endpoint = "otel-collector:4318"
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		log.L.Error("otel exporter", zap.Error(err))
		return noop
	}
	name := conf.Trace.ServiceName
	if name == "" {
		name = "perish-api"
	}
	res, _ := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(name),
		attribute.String("deployment.environment", conf.App.Env),
	))
	ratio := conf.Trace.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown
}
