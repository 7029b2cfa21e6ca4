package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, Options{Endpoint: endpoint, ServiceName: "test-service"})
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q) returned nil provider: %+v", endpoint, providers)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("shutdown should be no-op for empty endpoint, got error: %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name     string
		endpoint string
	}{
		{"malformed URL", "http://[invalid"},
		{"missing host", "http://"},
		{"invalid characters", "://invalid"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewProviders(ctx, Options{Endpoint: tc.endpoint, ServiceName: "test-service"}); err == nil {
				t.Errorf("NewProviders(%q) should return error", tc.endpoint)
			}
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	testCases := []struct {
		endpoint   string
		wantTarget string
		wantSecure bool
	}{
		{"localhost:4317", "localhost:4317", false},
		{"http://localhost:4317", "localhost:4317", false},
		{"https://collector:4317", "collector:4317", true},
		{"https://collector:4317/v1/traces", "collector:4317", true},
		{"  otel.internal:4317  ", "otel.internal:4317", false},
	}
	for _, tc := range testCases {
		target, secure, err := parseEndpoint(tc.endpoint)
		if err != nil {
			t.Errorf("parseEndpoint(%q): %v", tc.endpoint, err)
			continue
		}
		if target != tc.wantTarget {
			t.Errorf("parseEndpoint(%q) target = %q, want %q", tc.endpoint, target, tc.wantTarget)
		}
		if secure != tc.wantSecure {
			t.Errorf("parseEndpoint(%q) secure = %v, want %v", tc.endpoint, secure, tc.wantSecure)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("zeno-access", "staging")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	if got["service.name"] != "zeno-access" {
		t.Errorf("service.name = %q, want zeno-access", got["service.name"])
	}
	if got["deployment.environment.name"] != "staging" {
		t.Errorf("deployment.environment.name = %q, want staging", got["deployment.environment.name"])
	}

	res, err = newResource("zeno-access", "")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	for _, kv := range res.Attributes() {
		if kv.Key == "deployment.environment.name" {
			t.Error("environment attribute should be omitted when empty")
		}
	}
}

func TestSetGlobal_WithProviders(t *testing.T) {
	ctx := context.Background()
	providers, err := NewProviders(ctx, Options{ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	providers.SetGlobal()
	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("global TracerProvider not set")
	}
	if otel.GetMeterProvider() != providers.MeterProvider {
		t.Error("global MeterProvider not set")
	}
}

func TestSetGlobal_NilProviders(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	(&Providers{}).SetGlobal()
	if otel.GetTracerProvider() != prevTP {
		t.Error("nil TracerProvider should leave the global untouched")
	}
}
