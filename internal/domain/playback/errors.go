// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration classifies platform/scheme mismatches and missing identity.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport classifies network failures reaching the license endpoint.
	ErrTransport = errors.New("license transport error")
	// ErrLicenseServer classifies non-success responses from the license endpoint.
	ErrLicenseServer = errors.New("license server error")
	// ErrPlayback classifies failures reported by the playback surface.
	ErrPlayback = errors.New("playback error")
)

// ConfigurationError is fatal and never recovered at runtime.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// FailureKind separates transport failures from license server rejections.
type FailureKind string

const (
	FailureTransport     FailureKind = "transport"
	FailureLicenseServer FailureKind = "license_server"
)

// LicenseAcquisitionError is returned by a failed license exchange.
// URL is already redacted.
type LicenseAcquisitionError struct {
	Kind       FailureKind
	Scheme     DRMScheme
	URL        string
	StatusCode int
	Detail     string
	Err        error
}

func (e *LicenseAcquisitionError) Error() string {
	var msg string
	switch e.Kind {
	case FailureLicenseServer:
		msg = fmt.Sprintf("%s license request failed: status %d", e.Scheme.DisplayName(), e.StatusCode)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
	default:
		msg = fmt.Sprintf("%s license request failed", e.Scheme.DisplayName())
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LicenseAcquisitionError) Unwrap() error { return e.Err }

func (e *LicenseAcquisitionError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == FailureTransport
	case ErrLicenseServer:
		return e.Kind == FailureLicenseServer
	}
	return false
}

// PlaybackError is a decode or DRM failure reported by the device player.
type PlaybackError struct {
	SessionID string
	Message   string
}

// DefaultPlaybackMessage is shown when the player supplies no description.
const DefaultPlaybackMessage = "Unknown error"

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback error in session %s: %s", e.SessionID, e.Message)
}

func (e *PlaybackError) Is(target error) bool { return target == ErrPlayback }
