// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/drmplay/internal/api/problem"
	"github.com/ManuGH/drmplay/internal/domain/playback"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/session"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, code, detail string, extra map[string]any) {
	problem.Write(w, r, status, problemType, http.StatusText(status), code, detail, extra)
}

// writeError maps domain errors onto problem responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var licErr *playback.LicenseAcquisitionError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeProblem(w, r, http.StatusNotFound, "session/not_found", "SESSION_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, session.ErrSessionClosed):
		writeProblem(w, r, http.StatusConflict, "session/closed", "SESSION_CLOSED", err.Error(), nil)
	case errors.Is(err, session.ErrNotProtected):
		writeProblem(w, r, http.StatusConflict, "session/not_protected", "SESSION_NOT_PROTECTED", err.Error(), nil)
	case errors.Is(err, session.ErrStartRateLimited):
		w.Header().Set("Retry-After", "1")
		writeProblem(w, r, http.StatusTooManyRequests, "session/rate_limited", "SESSION_RATE_LIMITED", err.Error(), nil)
	case errors.Is(err, session.ErrCapacityExceeded):
		writeProblem(w, r, http.StatusServiceUnavailable, "session/capacity", "SESSION_CAPACITY", err.Error(), nil)
	case errors.Is(err, session.ErrManagerClosed):
		writeProblem(w, r, http.StatusServiceUnavailable, "system/shutting_down", "SHUTTING_DOWN", err.Error(), nil)
	case errors.As(err, &licErr):
		extra := map[string]any{"drmType": string(licErr.Scheme)}
		if licErr.Kind == playback.FailureLicenseServer {
			extra["upstreamStatus"] = licErr.StatusCode
			writeProblem(w, r, http.StatusBadGateway, "license/upstream", "LICENSE_UPSTREAM", licErr.Error(), extra)
			return
		}
		writeProblem(w, r, http.StatusBadGateway, "license/transport", "LICENSE_TRANSPORT", licErr.Error(), extra)
	case errors.Is(err, playback.ErrConfiguration):
		writeProblem(w, r, http.StatusUnprocessableEntity, "playback/configuration", "CONFIGURATION", err.Error(), nil)
	default:
		l := xglog.WithContext(r.Context(), s.logger)
		l.Error().
			Err(err).
			Str(xglog.FieldEvent, "api.unhandled_error").
			Msg("unhandled error")
		writeProblem(w, r, http.StatusInternalServerError, "system/internal", "INTERNAL", "internal error", nil)
	}
}
