// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/drmplay/internal/chat"
	xglog "github.com/ManuGH/drmplay/internal/log"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Get().Chat
	page := chat.Page{
		RoomID:        chi.URLParam(r, "roomId"),
		Username:      cfg.Username,
		Title:         r.URL.Query().Get("title"),
		StylesheetURL: cfg.StylesheetURL,
		ScriptURL:     cfg.ScriptURL,
	}
	if err := page.Validate(); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "chat/invalid_room", "INVALID_ROOM", err.Error(), nil)
		return
	}

	var buf bytes.Buffer
	if err := chat.Render(&buf, page); err != nil {
		l := xglog.WithContext(r.Context(), s.logger)
		l.Error().Err(err).Str(xglog.FieldEvent, "chat.render_failed").Msg("chat page render failed")
		writeProblem(w, r, http.StatusInternalServerError, "system/internal", "INTERNAL", "chat page unavailable", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", chatCSP(cfg.StylesheetURL, cfg.ScriptURL))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// chatCSP allows the inline loader plus the widget's own origins.
func chatCSP(stylesheetURL, scriptURL string) string {
	return strings.Join([]string{
		"default-src 'none'",
		"script-src 'unsafe-inline' " + origin(scriptURL),
		"style-src 'unsafe-inline' " + origin(stylesheetURL),
		"connect-src https: wss:",
		"img-src https: data:",
		"font-src https: data:",
	}, "; ")
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "'self'"
	}
	return u.Scheme + "://" + u.Host
}
