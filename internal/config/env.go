// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/drmplay/internal/log"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "DRMPLAY_"

// Environment keys, ENV > file > defaults.
const (
	EnvOrgID                  = EnvPrefix + "ORG_ID"
	EnvAssetID                = EnvPrefix + "ASSET_ID"
	EnvAccessToken            = EnvPrefix + "ACCESS_TOKEN"
	EnvManifestBaseURL        = EnvPrefix + "MANIFEST_BASE_URL"
	EnvLicenseBaseURL         = EnvPrefix + "LICENSE_BASE_URL"
	EnvFairPlayCertificateURL = EnvPrefix + "FAIRPLAY_CERTIFICATE_URL"
	EnvDRMRequired            = EnvPrefix + "DRM_REQUIRED"
	EnvLicenseTimeout         = EnvPrefix + "LICENSE_TIMEOUT"
	EnvLicenseMaxBytes        = EnvPrefix + "LICENSE_MAX_RESPONSE_BYTES"
	EnvSessionsMax            = EnvPrefix + "SESSIONS_MAX"
	EnvSessionsStartRate      = EnvPrefix + "SESSIONS_START_RATE"
	EnvSessionsStartBurst     = EnvPrefix + "SESSIONS_START_BURST"
	EnvListenAddr             = EnvPrefix + "LISTEN"
	EnvRateLimitRequests      = EnvPrefix + "RATELIMIT_REQUESTS"
	EnvRateLimitWindow        = EnvPrefix + "RATELIMIT_WINDOW"
	EnvTrustProxyHeaders      = EnvPrefix + "TRUST_PROXY_HEADERS"
	EnvChatStylesheetURL      = EnvPrefix + "CHAT_STYLESHEET_URL"
	EnvChatScriptURL          = EnvPrefix + "CHAT_SCRIPT_URL"
	EnvChatUsername           = EnvPrefix + "CHAT_USERNAME"
	EnvTelemetryEnabled       = EnvPrefix + "TELEMETRY_ENABLED"
	EnvTelemetryExporter      = EnvPrefix + "TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint      = EnvPrefix + "TELEMETRY_ENDPOINT"
	EnvTelemetrySamplingRate  = EnvPrefix + "TELEMETRY_SAMPLING_RATE"
	EnvTelemetryEnvironment   = EnvPrefix + "TELEMETRY_ENVIRONMENT"
	EnvLogLevel               = EnvPrefix + "LOG_LEVEL"
	EnvLogService             = EnvPrefix + "LOG_SERVICE"
)

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password")
}

// lookup returns the raw value and whether it should override the default.
// An empty variable counts as unset.
func lookup(logger zerolog.Logger, key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveKey(key) {
		ev.Bool("sensitive", true)
	} else {
		ev.Str("value", v)
	}
	ev.Msg("using environment variable")
	return v, true
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	if v, ok := lookup(log.WithComponent("config"), key); ok {
		return v
	}
	return defaultValue
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := lookup(logger, key)
	if !ok {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// ParseInt64 is ParseInt for byte sizes.
func ParseInt64(key string, defaultValue int64) int64 {
	logger := log.WithComponent("config")
	v, ok := lookup(logger, key)
	if !ok {
		return defaultValue
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int64("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := lookup(logger, key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	return d
}

// ParseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := lookup(logger, key)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	logger.Warn().
		Str("key", key).
		Str("value", v).
		Bool("default", defaultValue).
		Msg("invalid boolean in environment variable, using default")
	return defaultValue
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	v, ok := lookup(logger, key)
	if !ok {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	return f
}
