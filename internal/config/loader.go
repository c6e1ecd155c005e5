// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader. An empty path means ENV only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Path returns the config file path, possibly empty.
func (l *Loader) Path() string { return l.configPath }

// Load loads configuration with precedence ENV > File > Defaults.
// Order: defaults, strict file parse, env overrides, validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile parses a YAML file strictly. Unknown fields are a fatal error.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a single strict YAML document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if id := src.Identity; id != nil {
		setString(&dst.Identity.OrgID, id.OrgID)
		setString(&dst.Identity.AssetID, id.AssetID)
		setString(&dst.Identity.AccessToken, id.AccessToken)
	}
	if ep := src.Endpoints; ep != nil {
		setString(&dst.Endpoints.ManifestBaseURL, ep.ManifestBaseURL)
		setString(&dst.Endpoints.LicenseBaseURL, ep.LicenseBaseURL)
		setString(&dst.Endpoints.FairPlayCertificateURL, ep.FairPlayCertificateURL)
	}
	if pb := src.Playback; pb != nil && pb.DRMRequired != nil {
		dst.Playback.DRMRequired = *pb.DRMRequired
	}
	if lc := src.License; lc != nil {
		if err := setDuration(&dst.License.Timeout, "license.timeout", lc.Timeout); err != nil {
			return err
		}
		if lc.MaxResponseBytes != nil {
			dst.License.MaxResponseBytes = *lc.MaxResponseBytes
		}
	}
	if s := src.Sessions; s != nil {
		if s.Max != nil {
			dst.Sessions.Max = *s.Max
		}
		if s.StartRate != nil {
			dst.Sessions.StartRate = *s.StartRate
		}
		if s.StartBurst != nil {
			dst.Sessions.StartBurst = *s.StartBurst
		}
	}
	if api := src.API; api != nil {
		setString(&dst.API.ListenAddr, api.ListenAddr)
		if api.TrustProxyHeaders != nil {
			dst.API.TrustProxyHeaders = *api.TrustProxyHeaders
		}
		if rl := api.RateLimit; rl != nil {
			if rl.Requests != nil {
				dst.API.RateLimitRequests = *rl.Requests
			}
			if err := setDuration(&dst.API.RateLimitWindow, "api.rateLimit.window", rl.Window); err != nil {
				return err
			}
		}
	}
	if c := src.Chat; c != nil {
		setString(&dst.Chat.StylesheetURL, c.StylesheetURL)
		setString(&dst.Chat.ScriptURL, c.ScriptURL)
		setString(&dst.Chat.Username, c.Username)
	}
	if t := src.Telemetry; t != nil {
		if t.Enabled != nil {
			dst.Telemetry.Enabled = *t.Enabled
		}
		setString(&dst.Telemetry.ExporterType, t.Exporter)
		setString(&dst.Telemetry.Endpoint, t.Endpoint)
		setString(&dst.Telemetry.Environment, t.Environment)
		if t.SamplingRate != nil {
			dst.Telemetry.SamplingRate = *t.SamplingRate
		}
	}
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.LogService, src.LogService)
	return nil
}

func mergeEnvConfig(cfg *AppConfig) {
	cfg.Identity.OrgID = ParseString(EnvOrgID, cfg.Identity.OrgID)
	cfg.Identity.AssetID = ParseString(EnvAssetID, cfg.Identity.AssetID)
	cfg.Identity.AccessToken = ParseString(EnvAccessToken, cfg.Identity.AccessToken)

	cfg.Endpoints.ManifestBaseURL = ParseString(EnvManifestBaseURL, cfg.Endpoints.ManifestBaseURL)
	cfg.Endpoints.LicenseBaseURL = ParseString(EnvLicenseBaseURL, cfg.Endpoints.LicenseBaseURL)
	cfg.Endpoints.FairPlayCertificateURL = ParseString(EnvFairPlayCertificateURL, cfg.Endpoints.FairPlayCertificateURL)

	cfg.Playback.DRMRequired = ParseBool(EnvDRMRequired, cfg.Playback.DRMRequired)

	cfg.License.Timeout = ParseDuration(EnvLicenseTimeout, cfg.License.Timeout)
	cfg.License.MaxResponseBytes = ParseInt64(EnvLicenseMaxBytes, cfg.License.MaxResponseBytes)

	cfg.Sessions.Max = ParseInt(EnvSessionsMax, cfg.Sessions.Max)
	cfg.Sessions.StartRate = ParseFloat(EnvSessionsStartRate, cfg.Sessions.StartRate)
	cfg.Sessions.StartBurst = ParseInt(EnvSessionsStartBurst, cfg.Sessions.StartBurst)

	cfg.API.ListenAddr = ParseString(EnvListenAddr, cfg.API.ListenAddr)
	cfg.API.RateLimitRequests = ParseInt(EnvRateLimitRequests, cfg.API.RateLimitRequests)
	cfg.API.RateLimitWindow = ParseDuration(EnvRateLimitWindow, cfg.API.RateLimitWindow)
	cfg.API.TrustProxyHeaders = ParseBool(EnvTrustProxyHeaders, cfg.API.TrustProxyHeaders)

	cfg.Chat.StylesheetURL = ParseString(EnvChatStylesheetURL, cfg.Chat.StylesheetURL)
	cfg.Chat.ScriptURL = ParseString(EnvChatScriptURL, cfg.Chat.ScriptURL)
	cfg.Chat.Username = ParseString(EnvChatUsername, cfg.Chat.Username)

	cfg.Telemetry.Enabled = ParseBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = ParseString(EnvTelemetryExporter, cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = ParseString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat(EnvTelemetrySamplingRate, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = ParseString(EnvTelemetryEnvironment, cfg.Telemetry.Environment)

	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = ParseString(EnvLogService, cfg.LogService)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
