// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noopLicenser = LicenseFunc(func(context.Context, []byte, string, string) (string, error) {
	return "", nil
})

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" iOS ")
	require.NoError(t, err)
	assert.Equal(t, PlatformIOS, p)

	p, err = ParsePlatform("ANDROID")
	require.NoError(t, err)
	assert.Equal(t, PlatformAndroid, p)

	assert.Equal(t, "apple", PlatformIOS.Family())
	assert.Equal(t, "google", PlatformAndroid.Family())

	_, err = ParsePlatform("web")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestSchemeAndFormatMatrix(t *testing.T) {
	assert.Equal(t, SchemeFairPlay, SchemeFor(PlatformIOS))
	assert.Equal(t, SchemeWidevine, SchemeFor(PlatformAndroid))

	assert.Equal(t, FormatM3U8, FormatFor(PlatformIOS, true))
	assert.Equal(t, FormatMPD, FormatFor(PlatformAndroid, true))
	assert.Equal(t, FormatM3U8, FormatFor(PlatformIOS, false))
	assert.Equal(t, FormatM3U8, FormatFor(PlatformAndroid, false))
}

func TestStreamIdentity_Validate(t *testing.T) {
	id := StreamIdentity{OrgID: "org", AssetID: "asset", AccessToken: "tok"}
	require.NoError(t, id.Validate())
	assert.Equal(t, "org/asset", id.String())

	id.AccessToken = " "
	err := id.Validate()
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "identity.accessToken", cfgErr.Field)
}

func TestValidateDescriptor_RejectsCrossedSchemes(t *testing.T) {
	fairplayOnAndroid := SourceDescriptor{
		Format: FormatMPD,
		URI:    "https://cdn.example.com/video.mpd",
		DRM: &DRMConfig{
			Scheme:              SchemeFairPlay,
			LicenseEndpoint:     "https://lic.example.com",
			CertificateEndpoint: "https://cert.example.com/fairplay.cer",
			Licenser:            noopLicenser,
		},
	}
	err := ValidateDescriptor(PlatformAndroid, true, fairplayOnAndroid)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)

	widevineM3U8 := SourceDescriptor{
		Format: FormatM3U8,
		URI:    "https://cdn.example.com/video.m3u8",
		DRM:    &DRMConfig{Scheme: SchemeWidevine, LicenseEndpoint: "https://lic.example.com", Licenser: noopLicenser},
	}
	assert.ErrorIs(t, ValidateDescriptor(PlatformIOS, true, widevineM3U8), ErrConfiguration)
}

func TestValidateDescriptor_UnprotectedMustOmitDRM(t *testing.T) {
	desc := SourceDescriptor{Format: FormatM3U8, URI: "https://cdn.example.com/video.m3u8"}
	require.NoError(t, ValidateDescriptor(PlatformAndroid, false, desc))

	desc.DRM = &DRMConfig{Scheme: SchemeWidevine}
	assert.ErrorIs(t, ValidateDescriptor(PlatformAndroid, false, desc), ErrConfiguration)
}

func TestLicenseAcquisitionError_Classification(t *testing.T) {
	transport := &LicenseAcquisitionError{Kind: FailureTransport, Scheme: SchemeWidevine, Err: errors.New("dial tcp: refused")}
	assert.ErrorIs(t, transport, ErrTransport)
	assert.NotErrorIs(t, transport, ErrLicenseServer)
	assert.Contains(t, transport.Error(), "Widevine license request failed")

	server := &LicenseAcquisitionError{Kind: FailureLicenseServer, Scheme: SchemeFairPlay, StatusCode: 500, Detail: "boom"}
	assert.ErrorIs(t, server, ErrLicenseServer)
	assert.Equal(t, "FairPlay license request failed: status 500: boom", server.Error())
}
