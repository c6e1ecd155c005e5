// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      false,
		ServiceName:  "drmplay-test",
		ExporterType: ExporterGRPC,
	})
	require.NoError(t, err)
	assert.False(t, provider.Enabled())

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording(), "disabled telemetry must install a noop tracer")
	span.End()

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "drmplay-test",
		ExporterType: "zipkin",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported exporter type "zipkin"`)
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1.5).Description())
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Equal(t, "AlwaysOffSampler", samplerFor(-1).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNilProviderShutdown(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestLicenseAttributes_OmitEmptyContentID(t *testing.T) {
	attrs := LicenseAttributes("widevine", "", 42)
	require.Len(t, attrs, 2)
	assert.Equal(t, DRMSchemeKey, string(attrs[0].Key))
	assert.Equal(t, int64(42), attrs[1].Value.AsInt64())

	assert.Len(t, LicenseAttributes("fairplay", "skd://asset", 1), 3)
}
