// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/drmplay/internal/validate"
)

const minimalYAML = `identity:
  orgId: 6eafqn
  assetId: BxMDwpFCRyN
  accessToken: file-token
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drmplay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := writeConfig(t, minimalYAML+`playback:
  drmRequired: false
license:
  timeout: 3s
api:
  listenAddr: 127.0.0.1:9090
  rateLimit:
    requests: 10
    window: 30s
`)
	cfg, err := NewLoader(path, "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "6eafqn", cfg.Identity.OrgID)
	assert.False(t, cfg.Playback.DRMRequired)
	assert.Equal(t, 3*time.Second, cfg.License.Timeout)
	assert.Equal(t, "127.0.0.1:9090", cfg.API.ListenAddr)
	assert.Equal(t, 10, cfg.API.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.API.RateLimitWindow)
	assert.Equal(t, DefaultLicenseBaseURL, cfg.Endpoints.LicenseBaseURL)
	assert.Equal(t, "v1.2.3", cfg.Version)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, minimalYAML)
	t.Setenv(EnvAccessToken, "env-token")
	t.Setenv(EnvDRMRequired, "no")
	t.Setenv(EnvSessionsMax, "3")
	t.Setenv(EnvLicenseTimeout, "not-a-duration")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Identity.AccessToken)
	assert.False(t, cfg.Playback.DRMRequired)
	assert.Equal(t, 3, cfg.Sessions.Max)
	assert.Equal(t, DefaultLicenseTimeout, cfg.License.Timeout, "invalid env value falls back")
}

func TestLoad_TrustProxyHeaders(t *testing.T) {
	cfg, err := NewLoader(writeConfig(t, minimalYAML), "").Load()
	require.NoError(t, err)
	assert.False(t, cfg.API.TrustProxyHeaders, "off unless configured")

	cfg, err = NewLoader(writeConfig(t, minimalYAML+`api:
  trustProxyHeaders: true
`), "").Load()
	require.NoError(t, err)
	assert.True(t, cfg.API.TrustProxyHeaders)

	t.Setenv(EnvTrustProxyHeaders, "false")
	cfg, err = NewLoader(writeConfig(t, minimalYAML+`api:
  trustProxyHeaders: true
`), "").Load()
	require.NoError(t, err)
	assert.False(t, cfg.API.TrustProxyHeaders)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv(EnvOrgID, "org")
	t.Setenv(EnvAssetID, "asset")
	t.Setenv(EnvAccessToken, "tok")

	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, "org/asset", cfg.StreamIdentity().String())
	assert.Equal(t, DefaultManifestBaseURL, cfg.SourceEndpoints().ManifestBaseURL)
}

func TestLoad_IdentityHasNoDefaults(t *testing.T) {
	_, err := NewLoader("", "").Load()
	require.Error(t, err)

	var verr validate.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"identity.orgId", "identity.assetId", "identity.accessToken"}, fields)
}

func TestLoad_StrictUnknownKey(t *testing.T) {
	path := writeConfig(t, minimalYAML+"bogus: true\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoad_RejectsNonYAMLExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drmplay.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
}

func TestLoad_MultipleDocuments(t *testing.T) {
	path := writeConfig(t, minimalYAML+"---\nlogLevel: debug\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	path := writeConfig(t, minimalYAML+`endpoints:
  licenseBaseUrl: ftp://license.example.com/
`)
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoints.licenseBaseUrl")
}

func TestLoad_BadDurationInFile(t *testing.T) {
	path := writeConfig(t, minimalYAML+"license:\n  timeout: soon\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "license.timeout")
}

func TestParseFile_Empty(t *testing.T) {
	fc, err := ParseFile(nil)
	require.NoError(t, err)
	assert.Nil(t, fc.Identity)
}

func TestWriteExample_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drmplay.yaml")
	require.NoError(t, WriteExample(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "your-org-id", cfg.Identity.OrgID)
	assert.Equal(t, Defaults().Chat, cfg.Chat)

	err = WriteExample(path, false)
	require.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteExample(path, true))
}

func TestToFileConfig_LoadsBackUnchanged(t *testing.T) {
	want := Defaults()
	want.Version = "v9"
	want.Identity = IdentityConfig{OrgID: "org", AssetID: "asset", AccessToken: "secret"}
	want.Playback.DRMRequired = false
	want.Sessions.Max = 7
	want.Telemetry.Environment = "staging"

	out, err := yaml.Marshal(ToFileConfig(want))
	require.NoError(t, err)
	path := writeConfig(t, string(out))

	got, err := NewLoader(path, "v9").Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
