// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/drmplay/internal/domain/playback"
)

// handleAcquireLicense relays a device challenge to the session's license
// endpoint. The body mirrors the upstream request, {"spc": ..., "assetId": ...},
// and spc is passed on as the device encoded it.
func (s *Server) handleAcquireLicense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req playback.LicenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "request/invalid", "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if strings.TrimSpace(req.Spc) == "" {
		writeProblem(w, r, http.StatusBadRequest, "request/invalid", "INVALID_REQUEST", "spc must not be empty", nil)
		return
	}

	contentID := req.AssetID
	if contentID == "" {
		sess, err := s.sessions.Get(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		contentID = sess.Identity.AssetID
	}

	license, err := s.sessions.RelayLicense(r.Context(), id, req.Spc, contentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, licenseResponse{License: license})
}
