package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StdoutTelemetryOptions controls the local SDK wiring InstallStdoutTelemetry
// builds. It exists for callers (cmd/cyq's --otel-stdout flag) that want to
// see driver spans/metrics on the console without standing up a collector.
type StdoutTelemetryOptions struct {
	// PrettyPrint formats the exported JSON for human reading.
	PrettyPrint bool

	// MetricInterval controls how often the periodic metric reader exports.
	// Zero uses the SDK default.
	MetricInterval time.Duration
}

// InstallStdoutTelemetry wires a TracerProvider and MeterProvider backed by
// the stdout exporters and installs them as the global providers the
// `observabilityInstruments` in this package reads via otel.Tracer/otel.Meter.
// It returns a shutdown func the caller must invoke (typically deferred) to
// flush and release the exporters.
func InstallStdoutTelemetry(ctx context.Context, opts StdoutTelemetryOptions) (shutdown func(context.Context) error, err error) {
	traceOpts := []stdouttrace.Option{stdouttrace.WithWriter(os.Stderr)}
	if opts.PrettyPrint {
		traceOpts = append(traceOpts, stdouttrace.WithPrettyPrint())
	}
	traceExporter, err := stdouttrace.New(traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating stdout trace exporter: %w", err)
	}

	metricOpts := []stdoutmetric.Option{stdoutmetric.WithWriter(os.Stderr)}
	if opts.PrettyPrint {
		metricOpts = append(metricOpts, stdoutmetric.WithPrettyPrint())
	}
	metricExporter, err := stdoutmetric.New(metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating stdout metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if opts.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(opts.MetricInterval))
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, readerOpts...)),
	)

	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(shutdownCtx context.Context) error {
		defer func() {
			otel.SetTracerProvider(prevTP)
			otel.SetMeterProvider(prevMP)
		}()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("telemetry: shutting down tracer provider: %w", err)
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("telemetry: shutting down meter provider: %w", err)
		}
		return nil
	}, nil
}
