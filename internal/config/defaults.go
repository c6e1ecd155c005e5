// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/drmplay/internal/chat"
	"github.com/ManuGH/drmplay/internal/telemetry"
)

const (
	DefaultManifestBaseURL        = "https://dlbdnoa93s0gw.cloudfront.net/live"
	DefaultLicenseBaseURL         = "https://app.tpstreams.com/api/v1"
	DefaultFairPlayCertificateURL = "https://static.testpress.in/static/fairplay.cer"

	DefaultChatStylesheetURL = "https://static.tpstreams.com/static/css/live_chat_v1.css"
	DefaultChatScriptURL     = "https://static.tpstreams.com/static/js/live_chat_v1.umd.cjs"

	DefaultListenAddr       = ":8080"
	DefaultLicenseTimeout   = 10 * time.Second
	DefaultLicenseMaxBytes  = 1 << 20
	DefaultMaxSessions      = 64
	DefaultStartRate        = 5.0
	DefaultStartBurst       = 10
	DefaultRateLimitReqs    = 120
	DefaultRateLimitWindow  = time.Minute
	DefaultTelemetryTarget  = "localhost:4317"
	DefaultTelemetryExport  = telemetry.ExporterGRPC
	DefaultLogLevel         = "info"
	DefaultLogService       = "drmplay"
	DefaultSamplingFraction = 1.0
)

// Defaults returns the configuration used when neither file nor ENV set a key.
// Identity is intentionally left empty.
func Defaults() AppConfig {
	return AppConfig{
		Endpoints: EndpointsConfig{
			ManifestBaseURL:        DefaultManifestBaseURL,
			LicenseBaseURL:         DefaultLicenseBaseURL,
			FairPlayCertificateURL: DefaultFairPlayCertificateURL,
		},
		Playback: PlaybackConfig{DRMRequired: true},
		License: LicenseConfig{
			Timeout:          DefaultLicenseTimeout,
			MaxResponseBytes: DefaultLicenseMaxBytes,
		},
		Sessions: SessionsConfig{
			Max:        DefaultMaxSessions,
			StartRate:  DefaultStartRate,
			StartBurst: DefaultStartBurst,
		},
		API: APIConfig{
			ListenAddr:        DefaultListenAddr,
			RateLimitRequests: DefaultRateLimitReqs,
			RateLimitWindow:   DefaultRateLimitWindow,
		},
		Chat: ChatConfig{
			StylesheetURL: DefaultChatStylesheetURL,
			ScriptURL:     DefaultChatScriptURL,
			Username:      chat.DefaultUsername,
		},
		Telemetry: TelemetryConfig{
			ExporterType: DefaultTelemetryExport,
			Endpoint:     DefaultTelemetryTarget,
			SamplingRate: DefaultSamplingFraction,
		},
		LogLevel:   DefaultLogLevel,
		LogService: DefaultLogService,
	}
}
