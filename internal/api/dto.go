// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/drmplay/internal/session"
)

const maxRequestBody = 256 << 10

type startSessionRequest struct {
	Platform string `json:"platform"`
	// DRM defaults to playback.drmRequired when omitted.
	DRM *bool `json:"drm,omitempty"`
}

type toggleSessionRequest struct {
	// ID of the session the device believes is live; empty starts one.
	ID       string `json:"id,omitempty"`
	Platform string `json:"platform"`
	DRM      *bool  `json:"drm,omitempty"`
}

type playbackErrorRequest struct {
	Message string `json:"message"`
}

type playbackErrorResponse struct {
	Message string `json:"message"`
}

type licenseResponse struct {
	License string `json:"license"`
}

type platformResponse struct {
	Platform string `json:"platform"`
	Family   string `json:"family"`
	DRMType  string `json:"drmType"`
	Format   string `json:"format"`
	Banner   string `json:"banner"`
}

// drmDTO is the device-facing DRM config. LicenseServer points at this
// relay, never upstream.
type drmDTO struct {
	Type           string `json:"type"`
	LicenseServer  string `json:"licenseServer"`
	CertificateURL string `json:"certificateUrl,omitempty"`
}

type sourceDTO struct {
	Type string  `json:"type"`
	URI  string  `json:"uri"`
	DRM  *drmDTO `json:"drm,omitempty"`
}

type sessionDTO struct {
	ID          string     `json:"id"`
	State       string     `json:"state"`
	Platform    string     `json:"platform"`
	DRMRequired bool       `json:"drmRequired"`
	OrgID       string     `json:"orgId"`
	AssetID     string     `json:"assetId"`
	Source      sourceDTO  `json:"source"`
	StartedAt   time.Time  `json:"startedAt"`
	LoadedAt    *time.Time `json:"loadedAt,omitempty"`
}

type sessionListDTO struct {
	Sessions []sessionDTO `json:"sessions"`
}

// toSessionDTO renders s for a device. relayBase is the absolute URL of the
// sessions collection, used to build the license relay URL.
func toSessionDTO(s session.Session, relayBase string) sessionDTO {
	out := sessionDTO{
		ID:          s.ID,
		State:       string(s.State),
		Platform:    string(s.Platform),
		DRMRequired: s.DRMRequired,
		OrgID:       s.Identity.OrgID,
		AssetID:     s.Identity.AssetID,
		Source: sourceDTO{
			Type: string(s.Descriptor.Format),
			URI:  s.Descriptor.URI,
		},
		StartedAt: s.StartedAt.UTC(),
	}
	if !s.LoadedAt.IsZero() {
		t := s.LoadedAt.UTC()
		out.LoadedAt = &t
	}
	if d := s.Descriptor.DRM; d != nil {
		out.Source.DRM = &drmDTO{
			Type:           string(d.Scheme),
			LicenseServer:  relayBase + "/" + s.ID + "/license",
			CertificateURL: d.CertificateEndpoint,
		}
	}
	return out
}

// sessionsBaseURL derives the public sessions URL from the request.
// X-Forwarded-Proto and X-Forwarded-Host are only read when trustProxy is set.
func sessionsBaseURL(r *http.Request, trustProxy bool) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if trustProxy {
		if p := r.Header.Get("X-Forwarded-Proto"); p == "https" || p == "http" {
			scheme = p
		}
		if fh := r.Header.Get("X-Forwarded-Host"); fh != "" && !strings.ContainsAny(fh, "/ ,") {
			host = fh
		}
	}
	return scheme + "://" + host + "/api/v1/sessions"
}

// decodeJSON reads a single bounded JSON object; unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
