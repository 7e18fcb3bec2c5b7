package util

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/warptools/zcsv/pkg/logging"
	"github.com/warptools/zcsv/pkg/tracing"
)

// TracerName names the tracer every zcsv command span comes from.
const TracerName = "github.com/warptools/zcsv"

// commandResource describes one zcsv invocation: the service, the command being run,
// and, when the first argument names one, the archive it works on.
func commandResource(c *cli.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(c.App.Name),
		semconv.ServiceVersionKey.String(c.App.Version),
	}
	if c.Command != nil {
		attrs = append(attrs, attribute.String(tracing.AttrKeyZcsvCommand, c.Command.FullName()))
	}
	if arg := c.Args().First(); arg != "" && arg != "-" {
		if p, err := ResolvePath(arg); err == nil {
			attrs = append(attrs, attribute.String(tracing.AttrKeyZcsvArchivePath, p))
		}
	}
	res, err := resource.New(c.Context,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithFromEnv(),
		resource.WithAttributes(attrs...),
	)
	// a detector that comes up short still leaves a usable resource.
	if errors.Is(err, resource.ErrPartialResource) {
		return res, nil
	}
	return res, err
}

// traceFileExporter writes spans as indented JSON to a file, and closes it on Shutdown.
type traceFileExporter struct {
	*stdouttrace.Exporter
	f *os.File
}

func (e traceFileExporter) Shutdown(ctx context.Context) error {
	err := e.Exporter.Shutdown(ctx)
	if cerr := e.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// fileExporter honors --trace.file. It returns nil when the flag is unset.
func fileExporter(c *cli.Context) (sdktrace.SpanExporter, error) {
	name := c.String("trace.file")
	if name == "" {
		return nil, nil
	}
	logging.Ctx(c.Context).Debug("", "writing trace to %s", name)
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		f.Close()
		return nil, err
	}
	return traceFileExporter{exp, f}, nil
}

// httpExporter honors the --trace.http.* flags. It returns nil unless --trace.http.enable is set.
func httpExporter(c *cli.Context) (sdktrace.SpanExporter, error) {
	if !c.Bool("trace.http.enable") {
		return nil, nil
	}
	var opts []otlptracehttp.Option
	if c.Bool("trace.http.insecure") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if endpoint := c.String("trace.http.endpoint"); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	logging.Ctx(c.Context).Debug("", "exporting trace over otlp http (insecure: %t, endpoint: %q)",
		c.Bool("trace.http.insecure"), c.String("trace.http.endpoint"))
	return otlptrace.New(c.Context, otlptracehttp.NewClient(opts...))
}

// newTracingProvider builds a provider with one batcher per exporter the flags enable.
// It returns nil when none are, so commands run with a no-op tracer.
func newTracingProvider(c *cli.Context) (*sdktrace.TracerProvider, error) {
	var exporters []sdktrace.SpanExporter
	fail := func(err error) (*sdktrace.TracerProvider, error) {
		for _, exp := range exporters {
			exp.Shutdown(c.Context)
		}
		return nil, err
	}
	for _, build := range []func(*cli.Context) (sdktrace.SpanExporter, error){fileExporter, httpExporter} {
		exp, err := build(c)
		if err != nil {
			return fail(err)
		}
		if exp != nil {
			exporters = append(exporters, exp)
		}
	}
	if len(exporters) == 0 {
		return nil, nil
	}

	res, err := commandResource(c)
	if err != nil {
		return fail(err)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, exp := range exporters {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}
