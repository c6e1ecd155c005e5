// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/drmplay/internal/config"
	"github.com/ManuGH/drmplay/internal/domain/playback"
	"github.com/ManuGH/drmplay/internal/license"
	"github.com/ManuGH/drmplay/internal/session"
	"github.com/ManuGH/drmplay/internal/source"
)

const testToken = "s3cret-token"

type staticConfig config.AppConfig

func (c staticConfig) Get() config.AppConfig { return config.AppConfig(c) }

type licenseCall struct {
	challenge  []byte
	contentID  string
	licenseURL string
}

type fakeLicenser struct {
	mu    sync.Mutex
	calls []licenseCall
	err   error
}

func (f *fakeLicenser) AcquireLicense(_ context.Context, challenge []byte, contentID, licenseURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, licenseCall{challenge, contentID, licenseURL})
	if f.err != nil {
		return "", f.err
	}
	return base64.StdEncoding.EncodeToString(append([]byte("license:"), challenge...)), nil
}

func (f *fakeLicenser) Calls() []licenseCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]licenseCall(nil), f.calls...)
}

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Identity = config.IdentityConfig{OrgID: "6eafqn", AssetID: "BxMDwpFCRyN", AccessToken: testToken}
	cfg.API.RateLimitRequests = 0
	return cfg
}

func newTestServer(t *testing.T, lic *fakeLicenser) *httptest.Server {
	t.Helper()
	return newTestServerWithConfig(t, lic, testConfig())
}

func newTestServerWithConfig(t *testing.T, lic *fakeLicenser, cfg config.AppConfig) *httptest.Server {
	t.Helper()
	resolver := source.NewResolver(cfg.SourceEndpoints(), lic)
	mgr := session.NewManager(resolver, session.StaticIdentity(cfg.StreamIdentity()), session.Options{})
	srv := httptest.NewServer(NewServer(Deps{Sessions: mgr, Config: staticConfig(cfg)}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func startSession(t *testing.T, base string, body any) sessionDTO {
	t.Helper()
	resp, data := do(t, http.MethodPost, base+"/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var out sessionDTO
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestStartSession_IOSFairPlay(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})

	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/sessions", map[string]any{"platform": "ios", "drm": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotContains(t, string(data), testToken, "device payload must not carry the access token")

	var s sessionDTO
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "/api/v1/sessions/"+s.ID, resp.Header.Get("Location"))
	assert.Equal(t, "LOADING", s.State)
	assert.Equal(t, "m3u8", s.Source.Type)
	assert.Equal(t, "https://dlbdnoa93s0gw.cloudfront.net/live/6eafqn/BxMDwpFCRyN/video.m3u8", s.Source.URI)
	require.NotNil(t, s.Source.DRM)
	assert.Equal(t, "fairplay", s.Source.DRM.Type)
	assert.Equal(t, srv.URL+"/api/v1/sessions/"+s.ID+"/license", s.Source.DRM.LicenseServer)
	assert.Equal(t, config.DefaultFairPlayCertificateURL, s.Source.DRM.CertificateURL)
}

func TestStartSession_AndroidWidevine(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	s := startSession(t, srv.URL, map[string]any{"platform": "android", "drm": true})

	assert.Equal(t, "mpd", s.Source.Type)
	assert.True(t, strings.HasSuffix(s.Source.URI, "/video.mpd"))
	require.NotNil(t, s.Source.DRM)
	assert.Equal(t, "widevine", s.Source.DRM.Type)
	assert.Empty(t, s.Source.DRM.CertificateURL)
}

func TestStartSession_WithoutDRM(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	s := startSession(t, srv.URL, map[string]any{"platform": "android", "drm": false})

	assert.Equal(t, "m3u8", s.Source.Type)
	assert.Nil(t, s.Source.DRM)
}

func TestStartSession_DRMDefaultsFromConfig(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	s := startSession(t, srv.URL, map[string]any{"platform": "ios"})
	assert.True(t, s.DRMRequired)
	assert.NotNil(t, s.Source.DRM)
}

func TestStartSession_BadRequests(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})

	tests := []struct {
		name string
		body any
		code string
	}{
		{"unknown platform", map[string]any{"platform": "windows"}, "INVALID_PLATFORM"},
		{"unknown field", map[string]any{"platform": "ios", "extra": 1}, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
			assert.Contains(t, string(data), tt.code)
		})
	}
}

func TestAcquireLicense_RelaysToSessionEndpoint(t *testing.T) {
	lic := &fakeLicenser{}
	srv := newTestServer(t, lic)
	s := startSession(t, srv.URL, map[string]any{"platform": "ios", "drm": true})

	resp, data := do(t, http.MethodPost, s.Source.DRM.LicenseServer, map[string]any{
		"spc":     base64.StdEncoding.EncodeToString([]byte("challenge")),
		"assetId": "skd-content",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var out licenseResponse
	require.NoError(t, json.Unmarshal(data, &out))
	decoded, err := base64.StdEncoding.DecodeString(out.License)
	require.NoError(t, err)
	assert.Equal(t, "license:challenge", string(decoded))

	calls := lic.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "skd-content", calls[0].contentID)
	assert.Contains(t, calls[0].licenseURL, "drm_type=fairplay")
	assert.Contains(t, calls[0].licenseURL, "access_token="+testToken)
}

func TestAcquireLicense_ForwardsSpcVerbatim(t *testing.T) {
	var mu sync.Mutex
	var upstreamSPC string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		upstreamSPC = body["spc"]
		mu.Unlock()
		_, _ = w.Write([]byte{0xca, 0xfe})
	}))
	t.Cleanup(upstream.Close)

	cfg := testConfig()
	cfg.Endpoints.LicenseBaseURL = upstream.URL + "/api/v1/"
	broker := license.NewBroker(license.Config{Client: upstream.Client()})
	mgr := session.NewManager(source.NewResolver(cfg.SourceEndpoints(), broker), session.StaticIdentity(cfg.StreamIdentity()), session.Options{})
	srv := httptest.NewServer(NewServer(Deps{Sessions: mgr, Config: staticConfig(cfg)}).Handler())
	t.Cleanup(srv.Close)

	s := startSession(t, srv.URL, map[string]any{"platform": "ios", "drm": true})
	for _, spc := range []string{"QUJDRA", "QUJD-_==", "QUJD\nRA=="} {
		resp, data := do(t, http.MethodPost, s.Source.DRM.LicenseServer, map[string]any{"spc": spc, "assetId": "skd-content"})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

		var out licenseResponse
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, "yv4=", out.License)

		mu.Lock()
		assert.Equal(t, spc, upstreamSPC)
		mu.Unlock()
	}
}

func TestAcquireLicense_DefaultsContentIDToAsset(t *testing.T) {
	lic := &fakeLicenser{}
	srv := newTestServer(t, lic)
	s := startSession(t, srv.URL, map[string]any{"platform": "android", "drm": true})

	resp, _ := do(t, http.MethodPost, s.Source.DRM.LicenseServer, map[string]any{
		"spc": base64.StdEncoding.EncodeToString([]byte{0x08, 0x04}),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	calls := lic.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "BxMDwpFCRyN", calls[0].contentID)
	assert.Contains(t, calls[0].licenseURL, "drm_type=widevine")
}

func TestAcquireLicense_UpstreamFailure(t *testing.T) {
	lic := &fakeLicenser{err: &playback.LicenseAcquisitionError{
		Kind:       playback.FailureLicenseServer,
		Scheme:     playback.SchemeFairPlay,
		StatusCode: http.StatusInternalServerError,
	}}
	srv := newTestServer(t, lic)
	s := startSession(t, srv.URL, map[string]any{"platform": "ios", "drm": true})

	resp, data := do(t, http.MethodPost, s.Source.DRM.LicenseServer, map[string]any{
		"spc": base64.StdEncoding.EncodeToString([]byte("challenge")),
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "LICENSE_UPSTREAM", body["code"])
	assert.Equal(t, float64(500), body["upstreamStatus"])
	assert.NotContains(t, body, "license")
}

func TestAcquireLicense_TransportFailure(t *testing.T) {
	lic := &fakeLicenser{err: &playback.LicenseAcquisitionError{Kind: playback.FailureTransport, Scheme: playback.SchemeWidevine}}
	srv := newTestServer(t, lic)
	s := startSession(t, srv.URL, map[string]any{"platform": "android", "drm": true})

	resp, data := do(t, http.MethodPost, s.Source.DRM.LicenseServer, map[string]any{"spc": "AQI="})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(data), "LICENSE_TRANSPORT")
}

func TestAcquireLicense_Rejections(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	plain := startSession(t, srv.URL, map[string]any{"platform": "ios", "drm": false})

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+plain.ID+"/license", map[string]any{"spc": "AQI="})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/sessions/missing/license", map[string]any{"spc": "AQI=", "assetId": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+plain.ID+"/license", map[string]any{"spc": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+plain.ID+"/license", map[string]any{"spc": " \n"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	s := startSession(t, srv.URL, map[string]any{"platform": "ios", "drm": true})
	url := srv.URL + "/api/v1/sessions/" + s.ID

	resp, _ := do(t, http.MethodPost, url+"/loaded", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data := do(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got sessionDTO
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "PLAYING", got.State)
	assert.NotNil(t, got.LoadedAt)

	resp, data = do(t, http.MethodGet, srv.URL+"/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list sessionListDTO
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list.Sessions, 1)

	resp, _ = do(t, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	next := startSession(t, srv.URL, map[string]any{"platform": "ios", "drm": true})
	assert.NotEqual(t, s.ID, next.ID)
}

func TestToggleSession(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	url := srv.URL + "/api/v1/sessions/toggle"

	resp, data := do(t, http.MethodPost, url, map[string]any{"platform": "android", "drm": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var started sessionDTO
	require.NoError(t, json.Unmarshal(data, &started))
	assert.Equal(t, "LOADING", started.State)
	assert.Equal(t, "/api/v1/sessions/"+started.ID, resp.Header.Get("Location"))
	require.NotNil(t, started.Source.DRM)

	resp, _ = do(t, http.MethodPost, url, map[string]any{"id": started.ID, "platform": "android"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/sessions/"+started.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// a stale id starts a fresh session
	resp, data = do(t, http.MethodPost, url, map[string]any{"id": started.ID, "platform": "android"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var restarted sessionDTO
	require.NoError(t, json.Unmarshal(data, &restarted))
	assert.NotEqual(t, started.ID, restarted.ID)

	resp, _ = do(t, http.MethodPost, url, map[string]any{"platform": "symbian"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func startSessionWithForwardedHeaders(t *testing.T, base string) sessionDTO {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/sessions", strings.NewReader(`{"platform":"ios","drm":true}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "attacker.example")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out sessionDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestStartSession_IgnoresForwardedHeadersByDefault(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})
	s := startSessionWithForwardedHeaders(t, srv.URL)
	assert.Equal(t, srv.URL+"/api/v1/sessions/"+s.ID+"/license", s.Source.DRM.LicenseServer)
}

func TestStartSession_HonoursForwardedHeadersWhenTrusted(t *testing.T) {
	cfg := testConfig()
	cfg.API.TrustProxyHeaders = true
	srv := newTestServerWithConfig(t, &fakeLicenser{}, cfg)
	s := startSessionWithForwardedHeaders(t, srv.URL)
	assert.Equal(t, "https://attacker.example/api/v1/sessions/"+s.ID+"/license", s.Source.DRM.LicenseServer)
}

func TestPlaybackError_ResetsSession(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})

	s := startSession(t, srv.URL, map[string]any{"platform": "android", "drm": true})
	resp, data := do(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+s.ID+"/errors", map[string]any{"message": "decoder failed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"decoder failed"}`, string(data))

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s = startSession(t, srv.URL, map[string]any{"platform": "android", "drm": true})
	resp, data = do(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+s.ID+"/errors", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Unknown error"}`, string(data))
}

func TestGetPlatform_Banner(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})

	resp, data := do(t, http.MethodGet, srv.URL+"/api/v1/platforms/ios", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out platformResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Platform: IOS - FairPlay (M3U8)", out.Banner)
	assert.Equal(t, "fairplay", out.DRMType)

	resp, data = do(t, http.MethodGet, srv.URL+"/api/v1/platforms/android?drm=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Platform: ANDROID - Widevine (MPD)", out.Banner)

	resp, data = do(t, http.MethodGet, srv.URL+"/api/v1/platforms/android?drm=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Platform: ANDROID - Widevine (MPD)", out.Banner, "banner is fixed per platform")
	assert.Equal(t, "m3u8", out.Format)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/platforms/tizen", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatPage(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})

	resp, data := do(t, http.MethodGet, srv.URL+"/chat/room_42?title=Live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "https://static.tpstreams.com")
	assert.Contains(t, string(data), config.DefaultChatScriptURL)
	assert.Contains(t, string(data), "Guest User")

	resp, _ = do(t, http.MethodGet, srv.URL+"/chat/bad.room", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProbesAndFallbacks(t *testing.T) {
	srv := newTestServer(t, &fakeLicenser{})

	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, data := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "drmplay_http_requests_in_flight")

	resp, _ = do(t, http.MethodGet, srv.URL+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
