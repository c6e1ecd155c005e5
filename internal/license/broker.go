// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package license relays DRM challenges to the upstream license endpoint.
package license

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/drmplay/internal/domain/playback"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/metrics"
	"github.com/ManuGH/drmplay/internal/platform/httpx"
	"github.com/ManuGH/drmplay/internal/source"
	"github.com/ManuGH/drmplay/internal/telemetry"
)

const (
	defaultTimeout          = 15 * time.Second
	defaultMaxResponseBytes = 1 << 20
	maxErrorSnippetBytes    = 512
)

// Config configures a Broker. Zero values select defaults.
type Config struct {
	Client           *http.Client
	Timeout          time.Duration
	MaxResponseBytes int64
	Logger           *zerolog.Logger
}

// Broker performs one license exchange per call. It keeps no state between
// calls, never retries and never caches, so it is safe for concurrent use.
type Broker struct {
	client   *http.Client
	maxBytes int64
	logger   zerolog.Logger
	tracer   trace.Tracer
}

var (
	_ playback.LicenseAcquirer = (*Broker)(nil)
	_ playback.SPCRelayer      = (*Broker)(nil)
)

// NewBroker returns a broker backed by the hardened outbound client.
func NewBroker(cfg Config) *Broker {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = httpx.NewClient(timeout)
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}
	logger := xglog.WithComponent("license")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Broker{
		client:   client,
		maxBytes: maxBytes,
		logger:   logger,
		tracer:   telemetry.Tracer("drmplay/license"),
	}
}

// AcquireLicense posts {spc, assetId} to licenseURL and returns the binary
// response re-encoded as standard base64, which is what the native DRM
// bridge accepts. The challenge is sent as standard base64 text.
func (b *Broker) AcquireLicense(ctx context.Context, challenge []byte, contentID, licenseURL string) (string, error) {
	var spc string
	if len(challenge) > 0 {
		spc = playback.EncodeChallenge(challenge)
	}
	return b.RelaySPC(ctx, spc, contentID, licenseURL)
}

// RelaySPC is AcquireLicense for challenge text the device already encoded.
// spc reaches the upstream byte for byte.
func (b *Broker) RelaySPC(ctx context.Context, spc, contentID, licenseURL string) (string, error) {
	start := time.Now()
	scheme := source.SchemeFromLicenseURL(licenseURL)

	if err := validateInput(spc, licenseURL); err != nil {
		metrics.RecordLicenseRequest(string(scheme), metrics.OutcomeRejected, 0)
		b.logFailure(ctx, scheme, contentID, err)
		return "", err
	}

	ctx, span := b.tracer.Start(ctx, "license.acquire",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.LicenseAttributes(string(scheme), contentID, len(spc))...),
	)
	defer span.End()

	license, raw, err := b.exchange(ctx, scheme, spc, contentID, licenseURL)
	if err != nil {
		outcome := metrics.OutcomeTransportError
		if errors.Is(err, playback.ErrLicenseServer) {
			outcome = metrics.OutcomeServerError
		}
		metrics.RecordLicenseRequest(string(scheme), outcome, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		span.SetAttributes(telemetry.ErrorAttributes(outcome)...)
		b.logFailure(ctx, scheme, contentID, err)
		return "", err
	}

	metrics.RecordLicenseRequest(string(scheme), metrics.OutcomeSuccess, time.Since(start))
	metrics.ObserveLicenseSize(string(scheme), raw)
	span.SetStatus(codes.Ok, "")
	l := xglog.WithContext(ctx, b.logger)
	l.Debug().
		Str(xglog.FieldEvent, "license.acquired").
		Str(xglog.FieldScheme, string(scheme)).
		Str(xglog.FieldContentID, contentID).
		Int(xglog.FieldBytes, raw).
		Dur("elapsed", time.Since(start)).
		Msg("license acquired")
	return license, nil
}

func (b *Broker) exchange(ctx context.Context, scheme playback.DRMScheme, spc string, contentID, licenseURL string) (string, int, error) {
	redacted := xglog.RedactURL(licenseURL)
	fail := func(kind playback.FailureKind, status int, detail string, cause error) error {
		return &playback.LicenseAcquisitionError{
			Kind:       kind,
			Scheme:     scheme,
			URL:        redacted,
			StatusCode: status,
			Detail:     detail,
			Err:        cause,
		}
	}

	body, err := json.Marshal(playback.LicenseRequest{Spc: spc, AssetID: contentID})
	if err != nil {
		return "", 0, fmt.Errorf("encode license request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, licenseURL, bytes.NewReader(body))
	if err != nil {
		return "", 0, fail(playback.FailureTransport, 0, "", redactURLError(err, redacted))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", 0, fail(playback.FailureTransport, 0, "", redactURLError(err, redacted))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippetBytes))
		return "", 0, fail(playback.FailureLicenseServer, resp.StatusCode, strings.TrimSpace(string(snippet)), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxBytes+1))
	if err != nil {
		return "", 0, fail(playback.FailureTransport, resp.StatusCode, "", fmt.Errorf("read license body: %w", err))
	}
	if int64(len(data)) > b.maxBytes {
		return "", 0, fail(playback.FailureLicenseServer, resp.StatusCode,
			fmt.Sprintf("license payload exceeds %d bytes", b.maxBytes), nil)
	}
	if len(data) == 0 {
		return "", 0, fail(playback.FailureLicenseServer, resp.StatusCode, "empty license payload", nil)
	}
	return base64.StdEncoding.EncodeToString(data), len(data), nil
}

// logFailure swallows panics from the log sink.
func (b *Broker) logFailure(ctx context.Context, scheme playback.DRMScheme, contentID string, err error) {
	defer func() { _ = recover() }()
	l := xglog.WithContext(ctx, b.logger)
	evt := l.Error().
		Err(err).
		Str(xglog.FieldEvent, "license.failed").
		Str(xglog.FieldScheme, string(scheme)).
		Str(xglog.FieldContentID, contentID)
	var lae *playback.LicenseAcquisitionError
	if errors.As(err, &lae) {
		evt = evt.Str("kind", string(lae.Kind)).Str(xglog.FieldURL, lae.URL)
		if lae.StatusCode != 0 {
			evt = evt.Int(xglog.FieldStatus, lae.StatusCode)
		}
	}
	evt.Msgf("%s license request failed", scheme.DisplayName())
}

func validateInput(spc, licenseURL string) error {
	if strings.TrimSpace(spc) == "" {
		return &playback.ConfigurationError{Field: "challenge", Reason: "must not be empty"}
	}
	if strings.TrimSpace(licenseURL) == "" {
		return &playback.ConfigurationError{Field: "licenseUrl", Reason: "must not be empty"}
	}
	u, err := url.Parse(licenseURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return &playback.ConfigurationError{Field: "licenseUrl", Reason: "must be an absolute http(s) URL"}
	}
	return nil
}

// redactURLError keeps the access token out of *url.Error messages.
func redactURLError(err error, redacted string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redacted, Err: urlErr.Err}
	}
	return err
}
