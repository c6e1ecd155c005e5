// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package source builds playable source descriptors without performing I/O.
package source

import (
	"fmt"
	"net/url"

	"github.com/ManuGH/drmplay/internal/domain/playback"
)

// Endpoints are the static URL roots a descriptor is derived from.
type Endpoints struct {
	ManifestBaseURL        string
	LicenseBaseURL         string
	FairPlayCertificateURL string
}

// Resolver turns (identity, platform, drm) into a SourceDescriptor.
// It is safe for concurrent use; it holds no mutable state.
type Resolver struct {
	endpoints Endpoints
	licenser  playback.LicenseAcquirer
}

// NewResolver returns a resolver that attaches licenser to every DRM config.
func NewResolver(endpoints Endpoints, licenser playback.LicenseAcquirer) *Resolver {
	return &Resolver{endpoints: endpoints, licenser: licenser}
}

// Resolve builds a fresh descriptor. The same inputs always yield equal values.
func (r *Resolver) Resolve(id playback.StreamIdentity, p playback.Platform, drmRequired bool) (playback.SourceDescriptor, error) {
	if err := id.Validate(); err != nil {
		return playback.SourceDescriptor{}, err
	}
	if !p.Valid() {
		return playback.SourceDescriptor{}, &playback.ConfigurationError{
			Field:  "platform",
			Reason: fmt.Sprintf("unsupported platform %q", p),
		}
	}

	format := playback.FormatFor(p, drmRequired)
	uri, err := ManifestURL(r.endpoints.ManifestBaseURL, id, format)
	if err != nil {
		return playback.SourceDescriptor{}, err
	}

	desc := playback.SourceDescriptor{Format: format, URI: uri}
	if drmRequired {
		drm, err := r.drmConfig(id, p)
		if err != nil {
			return playback.SourceDescriptor{}, err
		}
		desc.DRM = &drm
	}

	if err := playback.ValidateDescriptor(p, drmRequired, desc); err != nil {
		return playback.SourceDescriptor{}, err
	}
	return desc, nil
}

func (r *Resolver) drmConfig(id playback.StreamIdentity, p playback.Platform) (playback.DRMConfig, error) {
	scheme := playback.SchemeFor(p)
	licenseURL, err := LicenseURL(r.endpoints.LicenseBaseURL, id, scheme)
	if err != nil {
		return playback.DRMConfig{}, err
	}
	cfg := playback.DRMConfig{
		Scheme:          scheme,
		LicenseEndpoint: licenseURL,
		Licenser:        r.licenser,
	}
	if scheme == playback.SchemeFairPlay {
		cfg.CertificateEndpoint = r.endpoints.FairPlayCertificateURL
	}
	return cfg, nil
}

// ManifestURL returns {base}/{org}/{asset}/video.{ext}.
func ManifestURL(base string, id playback.StreamIdentity, format playback.ManifestFormat) (string, error) {
	u, err := url.JoinPath(base, id.OrgID, id.AssetID, "video."+format.Extension())
	if err != nil {
		return "", &playback.ConfigurationError{Field: "endpoints.manifestBaseUrl", Reason: err.Error()}
	}
	return u, nil
}

// LicenseURL returns the license endpoint with the access token and scheme
// as query parameters.
func LicenseURL(base string, id playback.StreamIdentity, scheme playback.DRMScheme) (string, error) {
	raw, err := url.JoinPath(base, id.OrgID, "assets", id.AssetID, "drm_license/")
	if err != nil {
		return "", &playback.ConfigurationError{Field: "endpoints.licenseBaseUrl", Reason: err.Error()}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &playback.ConfigurationError{Field: "endpoints.licenseBaseUrl", Reason: err.Error()}
	}
	q := url.Values{}
	q.Set("access_token", id.AccessToken)
	q.Set("drm_type", string(scheme))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SchemeFromLicenseURL reads the drm_type parameter back out of a license URL.
func SchemeFromLicenseURL(raw string) playback.DRMScheme {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return playback.DRMScheme(u.Query().Get("drm_type"))
}
