// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import "fmt"

// ValidateDescriptor checks that desc is the one a resolver must produce for p.
// Any violation is a configuration defect.
func ValidateDescriptor(p Platform, drmRequired bool, desc SourceDescriptor) error {
	if !p.Valid() {
		return &ConfigurationError{Field: "platform", Reason: fmt.Sprintf("unsupported platform %q", p)}
	}
	if want := FormatFor(p, drmRequired); desc.Format != want {
		return &ConfigurationError{
			Field:  "manifest_format",
			Reason: fmt.Sprintf("%s on %s with drm=%t, want %s", desc.Format, p, drmRequired, want),
		}
	}
	if desc.URI == "" {
		return &ConfigurationError{Field: "uri", Reason: "must not be empty"}
	}
	if !drmRequired {
		if desc.DRM != nil {
			return &ConfigurationError{Field: "drm", Reason: "present on unprotected source"}
		}
		return nil
	}
	if desc.DRM == nil {
		return &ConfigurationError{Field: "drm", Reason: "missing on protected source"}
	}
	return ValidateDRMConfig(p, *desc.DRM)
}

// ValidateDRMConfig enforces the platform-mandated scheme.
func ValidateDRMConfig(p Platform, cfg DRMConfig) error {
	if want := SchemeFor(p); cfg.Scheme != want {
		return &ConfigurationError{
			Field:  "drm.type",
			Reason: fmt.Sprintf("%s is not valid on %s, want %s", cfg.Scheme, p, want),
		}
	}
	if cfg.LicenseEndpoint == "" {
		return &ConfigurationError{Field: "drm.licenseServer", Reason: "must not be empty"}
	}
	switch cfg.Scheme {
	case SchemeFairPlay:
		if cfg.CertificateEndpoint == "" {
			return &ConfigurationError{Field: "drm.certificateUrl", Reason: "required for fairplay"}
		}
	case SchemeWidevine:
		if cfg.CertificateEndpoint != "" {
			return &ConfigurationError{Field: "drm.certificateUrl", Reason: "not used by widevine"}
		}
	}
	if cfg.Licenser == nil {
		return &ConfigurationError{Field: "drm.getLicense", Reason: "license callback not set"}
	}
	return nil
}
