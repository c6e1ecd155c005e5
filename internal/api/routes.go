// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/drmplay/internal/api/middleware"
)

func (s *Server) routes() http.Handler {
	cfg := s.cfg.Get()

	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        cfg.LogService,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Group(func(r chi.Router) {
		if cfg.API.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(middleware.RateLimitConfig{
				Requests: cfg.API.RateLimitRequests,
				Window:   cfg.API.RateLimitWindow,
			}))
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/platforms/{platform}", s.handleGetPlatform)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", s.handleListSessions)
				r.Post("/", s.handleStartSession)
				r.Post("/toggle", s.handleToggleSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Delete("/", s.handleStopSession)
					r.Post("/loaded", s.handleSessionLoaded)
					r.Post("/errors", s.handlePlaybackError)
					r.Post("/license", s.handleAcquireLicense)
				})
			})
		})

		r.Get("/chat/{roomId}", s.handleChat)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "system/not_found", "NOT_FOUND", "no such route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "system/method_not_allowed", "METHOD_NOT_ALLOWED", r.Method+" not allowed here", nil)
	})
	return r
}
