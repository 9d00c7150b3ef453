package driver

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInstallStdoutTelemetryRestoresPreviousProviders(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()

	shutdown, err := InstallStdoutTelemetry(context.Background(), StdoutTelemetryOptions{})
	if err != nil {
		t.Fatalf("InstallStdoutTelemetry: %v", err)
	}

	if otel.GetTracerProvider() == prevTP {
		t.Error("expected InstallStdoutTelemetry to install a new global TracerProvider")
	}
	if otel.GetMeterProvider() == prevMP {
		t.Error("expected InstallStdoutTelemetry to install a new global MeterProvider")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if otel.GetTracerProvider() != prevTP {
		t.Error("expected shutdown to restore the previous global TracerProvider")
	}
	if otel.GetMeterProvider() != prevMP {
		t.Error("expected shutdown to restore the previous global MeterProvider")
	}
}
