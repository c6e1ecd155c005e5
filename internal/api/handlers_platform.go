// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ManuGH/drmplay/internal/domain/playback"
)

// upper is not safe for concurrent use; build one per call.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// PlatformBanner is the status line shown above the player,
// e.g. "Platform: IOS - FairPlay (M3U8)". It names the platform's protected
// delivery and does not change with the drm toggle; the response's format
// field carries the manifest actually served.
func PlatformBanner(p playback.Platform) string {
	return fmt.Sprintf("Platform: %s - %s (%s)",
		upper(string(p)),
		playback.SchemeFor(p).DisplayName(),
		upper(string(playback.FormatFor(p, true))))
}

func (s *Server) handleGetPlatform(w http.ResponseWriter, r *http.Request) {
	p, err := playback.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeProblem(w, r, http.StatusNotFound, "platform/unsupported", "UNSUPPORTED_PLATFORM", err.Error(), nil)
		return
	}
	drm := s.cfg.Get().Playback.DRMRequired
	if raw := r.URL.Query().Get("drm"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "request/invalid", "INVALID_REQUEST", "drm must be a boolean", nil)
			return
		}
		drm = v
	}

	writeJSON(w, http.StatusOK, platformResponse{
		Platform: string(p),
		Family:   p.Family(),
		DRMType:  string(playback.SchemeFor(p)),
		Format:   string(playback.FormatFor(p, drm)),
		Banner:   PlatformBanner(p),
	})
}
