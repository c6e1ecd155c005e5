// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/drmplay/internal/domain/playback"
	xglog "github.com/ManuGH/drmplay/internal/log"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "request/invalid", "INVALID_REQUEST", err.Error(), nil)
		return
	}
	p, err := playback.ParsePlatform(req.Platform)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "request/invalid_platform", "INVALID_PLATFORM", err.Error(), nil)
		return
	}
	drm := s.cfg.Get().Playback.DRMRequired
	if req.DRM != nil {
		drm = *req.DRM
	}

	sess, err := s.sessions.Start(r.Context(), p, drm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, toSessionDTO(sess, s.publicSessionsURL(r)))
}

// handleToggleSession backs a single play/stop button: a live session is
// stopped (204), otherwise a fresh one is started (201).
func (s *Server) handleToggleSession(w http.ResponseWriter, r *http.Request) {
	var req toggleSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "request/invalid", "INVALID_REQUEST", err.Error(), nil)
		return
	}
	p, err := playback.ParsePlatform(req.Platform)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "request/invalid_platform", "INVALID_PLATFORM", err.Error(), nil)
		return
	}
	drm := s.cfg.Get().Playback.DRMRequired
	if req.DRM != nil {
		drm = *req.DRM
	}

	sess, started, err := s.sessions.Toggle(r.Context(), req.ID, p, drm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !started {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, toSessionDTO(sess, s.publicSessionsURL(r)))
}

func (s *Server) publicSessionsURL(r *http.Request) string {
	return sessionsBaseURL(r, s.cfg.Get().API.TrustProxyHeaders)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	base := s.publicSessionsURL(r)
	list := s.sessions.List()
	out := sessionListDTO{Sessions: make([]sessionDTO, 0, len(list))}
	for _, sess := range list {
		out.Sessions = append(out.Sessions, toSessionDTO(sess, base))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(sess, s.publicSessionsURL(r)))
}

func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Stop(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionLoaded(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.MarkLoaded(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePlaybackError resets the session and echoes the message the device
// should display. An empty body yields the default message.
func (s *Server) handlePlaybackError(w http.ResponseWriter, r *http.Request) {
	var req playbackErrorRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, http.StatusBadRequest, "request/invalid", "INVALID_REQUEST", err.Error(), nil)
			return
		}
	}
	id := chi.URLParam(r, "id")
	perr, err := s.sessions.ReportPlaybackError(id, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l := xglog.WithContext(xglog.ContextWithSessionID(r.Context(), id), s.logger)
	l.Info().
		Str(xglog.FieldEvent, "api.playback_error").
		Msg("device reported playback error")
	writeJSON(w, http.StatusOK, playbackErrorResponse{Message: perr.Message})
}
