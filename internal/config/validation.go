// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/drmplay/internal/telemetry"
	"github.com/ManuGH/drmplay/internal/validate"
)

var webSchemes = []string{"http", "https"}

// Validate checks a resolved configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("identity.orgId", cfg.Identity.OrgID)
	v.NotEmpty("identity.assetId", cfg.Identity.AssetID)
	v.NotEmpty("identity.accessToken", cfg.Identity.AccessToken)

	v.URL("endpoints.manifestBaseUrl", cfg.Endpoints.ManifestBaseURL, webSchemes)
	v.URL("endpoints.licenseBaseUrl", cfg.Endpoints.LicenseBaseURL, webSchemes)
	v.URL("endpoints.fairplayCertificateUrl", cfg.Endpoints.FairPlayCertificateURL, webSchemes)

	v.DurationRange("license.timeout", cfg.License.Timeout, 100*time.Millisecond, 5*time.Minute)
	if cfg.License.MaxResponseBytes <= 0 {
		v.AddError("license.maxResponseBytes", "must be positive", cfg.License.MaxResponseBytes)
	}

	v.Range("sessions.max", cfg.Sessions.Max, 0, 100000)
	if cfg.Sessions.StartRate < 0 {
		v.AddError("sessions.startRate", "must not be negative", cfg.Sessions.StartRate)
	}
	v.Range("sessions.startBurst", cfg.Sessions.StartBurst, 0, 100000)

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.Range("api.rateLimit.requests", cfg.API.RateLimitRequests, 0, 1000000)
	if cfg.API.RateLimitRequests > 0 {
		v.DurationRange("api.rateLimit.window", cfg.API.RateLimitWindow, time.Second, time.Hour)
	}

	v.URL("chat.stylesheetUrl", cfg.Chat.StylesheetURL, webSchemes)
	v.URL("chat.scriptUrl", cfg.Chat.ScriptURL, webSchemes)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.ExporterType, []string{telemetry.ExporterGRPC, telemetry.ExporterHTTP})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		v.AddError("telemetry.samplingRate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", err.Error(), cfg.LogLevel)
	}

	return v.Err()
}
