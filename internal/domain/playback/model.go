// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package playback holds the value types shared by the source resolver,
// the license broker and the session manager.
package playback

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Platform is the resolved device platform family.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// ParsePlatform resolves a client-supplied platform name.
func ParsePlatform(raw string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(raw))) {
	case PlatformIOS:
		return PlatformIOS, nil
	case PlatformAndroid:
		return PlatformAndroid, nil
	}
	return "", &ConfigurationError{Field: "platform", Reason: fmt.Sprintf("unsupported platform %q", raw)}
}

// IsIOS reports whether p belongs to the Apple family.
func (p Platform) IsIOS() bool { return p == PlatformIOS }

// Family names the vendor ecosystem: "apple" for iOS, "google" otherwise.
func (p Platform) Family() string {
	if p.IsIOS() {
		return "apple"
	}
	return "google"
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// ManifestFormat is the container format of the stream manifest.
type ManifestFormat string

const (
	FormatM3U8 ManifestFormat = "m3u8"
	FormatMPD  ManifestFormat = "mpd"
)

// Extension returns the manifest file extension without the dot.
func (f ManifestFormat) Extension() string { return string(f) }

// DRMScheme names a content protection system.
type DRMScheme string

const (
	SchemeFairPlay DRMScheme = "fairplay"
	SchemeWidevine DRMScheme = "widevine"
)

// DisplayName is the vendor spelling used in user-facing text.
func (s DRMScheme) DisplayName() string {
	switch s {
	case SchemeFairPlay:
		return "FairPlay"
	case SchemeWidevine:
		return "Widevine"
	}
	return string(s)
}

// SchemeFor returns the only DRM scheme valid on p.
func SchemeFor(p Platform) DRMScheme {
	if p.IsIOS() {
		return SchemeFairPlay
	}
	return SchemeWidevine
}

// FormatFor returns the manifest format mandated for (p, drmRequired).
// Unprotected content is packaged as HLS only.
func FormatFor(p Platform, drmRequired bool) ManifestFormat {
	if drmRequired && !p.IsIOS() {
		return FormatMPD
	}
	return FormatM3U8
}

// StreamIdentity identifies one organisation asset and the token used to
// authorise license requests for it.
type StreamIdentity struct {
	OrgID       string
	AssetID     string
	AccessToken string
}

// Validate requires every field; identities have no defaults.
func (id StreamIdentity) Validate() error {
	switch {
	case strings.TrimSpace(id.OrgID) == "":
		return &ConfigurationError{Field: "identity.orgId", Reason: "must not be empty"}
	case strings.TrimSpace(id.AssetID) == "":
		return &ConfigurationError{Field: "identity.assetId", Reason: "must not be empty"}
	case strings.TrimSpace(id.AccessToken) == "":
		return &ConfigurationError{Field: "identity.accessToken", Reason: "must not be empty"}
	}
	return nil
}

// String omits the access token.
func (id StreamIdentity) String() string {
	return id.OrgID + "/" + id.AssetID
}

// LicenseAcquirer exchanges a DRM challenge for a base64 license payload.
// It matches the callback the native DRM stack invokes.
type LicenseAcquirer interface {
	AcquireLicense(ctx context.Context, challenge []byte, contentID, licenseURL string) (string, error)
}

// LicenseFunc adapts a plain function to LicenseAcquirer.
type LicenseFunc func(ctx context.Context, challenge []byte, contentID, licenseURL string) (string, error)

// AcquireLicense calls f.
func (f LicenseFunc) AcquireLicense(ctx context.Context, challenge []byte, contentID, licenseURL string) (string, error) {
	return f(ctx, challenge, contentID, licenseURL)
}

// SPCRelayer forwards challenge text that is already encoded. Relays use it
// so the upstream receives the spc exactly as the device sent it.
type SPCRelayer interface {
	RelaySPC(ctx context.Context, spc, contentID, licenseURL string) (string, error)
}

// DRMConfig tells the playback surface how to perform the DRM handshake.
type DRMConfig struct {
	Scheme              DRMScheme       `json:"type"`
	LicenseEndpoint     string          `json:"licenseServer"`
	CertificateEndpoint string          `json:"certificateUrl,omitempty"`
	Licenser            LicenseAcquirer `json:"-"`
}

// SourceDescriptor is everything the playback surface needs to start.
// A nil DRM means the stream is played without a handshake.
type SourceDescriptor struct {
	Format ManifestFormat `json:"type"`
	URI    string         `json:"uri"`
	DRM    *DRMConfig     `json:"drm,omitempty"`
}

// LicenseRequest is the JSON body posted to the license endpoint. Spc is
// the challenge text as the native DRM stack produced it and is relayed
// without being decoded.
type LicenseRequest struct {
	Spc     string `json:"spc"`
	AssetID string `json:"assetId"`
}

// EncodeChallenge renders raw challenge bytes as the spc text the license
// endpoint expects.
func EncodeChallenge(challenge []byte) string {
	return base64.StdEncoding.EncodeToString(challenge)
}
