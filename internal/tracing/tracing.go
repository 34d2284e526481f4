// Package tracing wires OpenTelemetry for inbound BFF requests and the
// outbound upstream transport.
package tracing

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "windback-bff"

// Provider owns the tracer provider lifecycle. A zero Provider is disabled
// and all of its methods are pass-through.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup installs a global tracer provider exporting to endpoint over OTLP/HTTP.
// An empty endpoint disables tracing.
func Setup(ctx context.Context, endpoint string) (*Provider, error) {
	if endpoint == "" {
		return &Provider{}, nil
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	if strings.HasPrefix(strings.ToLower(endpoint), "http://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}, nil
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Middleware wraps inbound handlers with otelhttp when tracing is enabled.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	if !p.Enabled() {
		return next
	}
	return otelhttp.NewHandler(next, "bff")
}

// Transport wraps base for outbound spans. base may be nil.
func (p *Provider) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !p.Enabled() {
		return base
	}
	return otelhttp.NewTransport(base)
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
