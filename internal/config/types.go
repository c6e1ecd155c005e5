// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/drmplay/internal/domain/playback"
	"github.com/ManuGH/drmplay/internal/source"
)

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version string

	Identity  IdentityConfig
	Endpoints EndpointsConfig
	Playback  PlaybackConfig
	License   LicenseConfig
	Sessions  SessionsConfig
	API       APIConfig
	Chat      ChatConfig
	Telemetry TelemetryConfig

	LogLevel   string
	LogService string
}

// IdentityConfig names the stream. AccessToken is a secret.
type IdentityConfig struct {
	OrgID       string
	AssetID     string
	AccessToken string
}

// EndpointsConfig holds the upstream URL roots.
type EndpointsConfig struct {
	ManifestBaseURL        string
	LicenseBaseURL         string
	FairPlayCertificateURL string
}

// PlaybackConfig controls descriptor defaults.
type PlaybackConfig struct {
	DRMRequired bool
}

// LicenseConfig bounds a single license exchange.
type LicenseConfig struct {
	Timeout          time.Duration
	MaxResponseBytes int64
}

// SessionsConfig bounds session admission.
type SessionsConfig struct {
	Max        int
	StartRate  float64
	StartBurst int
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	ListenAddr        string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TrustProxyHeaders honours X-Forwarded-Proto/Host when building
	// public URLs. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// ChatConfig points at the externally hosted chat widget.
type ChatConfig struct {
	StylesheetURL string
	ScriptURL     string
	Username      string
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	ExporterType string
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// StreamIdentity converts the identity section into the domain value.
func (c AppConfig) StreamIdentity() playback.StreamIdentity {
	return playback.StreamIdentity{
		OrgID:       c.Identity.OrgID,
		AssetID:     c.Identity.AssetID,
		AccessToken: c.Identity.AccessToken,
	}
}

// SourceEndpoints converts the endpoints section for the source resolver.
func (c AppConfig) SourceEndpoints() source.Endpoints {
	return source.Endpoints{
		ManifestBaseURL:        c.Endpoints.ManifestBaseURL,
		LicenseBaseURL:         c.Endpoints.LicenseBaseURL,
		FairPlayCertificateURL: c.Endpoints.FairPlayCertificateURL,
	}
}

// FileConfig is the on-disk YAML shape. Pointers distinguish "unset" from zero.
type FileConfig struct {
	Identity  *IdentityFile  `yaml:"identity,omitempty"`
	Endpoints *EndpointsFile `yaml:"endpoints,omitempty"`
	Playback  *PlaybackFile  `yaml:"playback,omitempty"`
	License   *LicenseFile   `yaml:"license,omitempty"`
	Sessions  *SessionsFile  `yaml:"sessions,omitempty"`
	API       *APIFile       `yaml:"api,omitempty"`
	Chat      *ChatFile      `yaml:"chat,omitempty"`
	Telemetry *TelemetryFile `yaml:"telemetry,omitempty"`

	LogLevel   string `yaml:"logLevel,omitempty"`
	LogService string `yaml:"logService,omitempty"`
}

type IdentityFile struct {
	OrgID       string `yaml:"orgId,omitempty"`
	AssetID     string `yaml:"assetId,omitempty"`
	AccessToken string `yaml:"accessToken,omitempty"`
}

type EndpointsFile struct {
	ManifestBaseURL        string `yaml:"manifestBaseUrl,omitempty"`
	LicenseBaseURL         string `yaml:"licenseBaseUrl,omitempty"`
	FairPlayCertificateURL string `yaml:"fairplayCertificateUrl,omitempty"`
}

type PlaybackFile struct {
	DRMRequired *bool `yaml:"drmRequired,omitempty"`
}

type LicenseFile struct {
	Timeout          string `yaml:"timeout,omitempty"`
	MaxResponseBytes *int64 `yaml:"maxResponseBytes,omitempty"`
}

type SessionsFile struct {
	Max        *int     `yaml:"max,omitempty"`
	StartRate  *float64 `yaml:"startRate,omitempty"`
	StartBurst *int     `yaml:"startBurst,omitempty"`
}

type APIFile struct {
	ListenAddr        string         `yaml:"listenAddr,omitempty"`
	RateLimit         *RateLimitFile `yaml:"rateLimit,omitempty"`
	TrustProxyHeaders *bool          `yaml:"trustProxyHeaders,omitempty"`
}

type RateLimitFile struct {
	Requests *int   `yaml:"requests,omitempty"`
	Window   string `yaml:"window,omitempty"`
}

type ChatFile struct {
	StylesheetURL string `yaml:"stylesheetUrl,omitempty"`
	ScriptURL     string `yaml:"scriptUrl,omitempty"`
	Username      string `yaml:"username,omitempty"`
}

type TelemetryFile struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}
