// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the relay.
const (
	HTTPRouteKey = "http.route"
	RequestIDKey = "http.request_id"

	DRMSchemeKey       = "drm.scheme"
	DRMContentIDKey    = "drm.content_id"
	DRMChallengeLenKey = "drm.challenge_bytes"
	DRMLicenseLenKey   = "drm.license_bytes"

	PlaybackPlatformKey = "playback.platform"
	PlaybackFormatKey   = "playback.manifest_format"
	PlaybackSessionKey  = "playback.session_id"

	ErrorTypeKey = "error.type"
)

// LicenseAttributes describes one license exchange. The license URL is left
// out because it carries the access token.
func LicenseAttributes(scheme, contentID string, challengeLen int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(DRMSchemeKey, scheme),
		attribute.Int(DRMChallengeLenKey, challengeLen),
	}
	if contentID != "" {
		attrs = append(attrs, attribute.String(DRMContentIDKey, contentID))
	}
	return attrs
}

// SessionAttributes describes a playback session.
func SessionAttributes(sessionID, platform, format string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(PlaybackSessionKey, sessionID),
		attribute.String(PlaybackPlatformKey, platform),
		attribute.String(PlaybackFormatKey, format),
	}
}

// ErrorAttributes classifies a failure on a span.
func ErrorAttributes(errType string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ErrorTypeKey, errType)}
}
