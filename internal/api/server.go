// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api is the HTTP relay between playback devices and the session
// manager. Devices never see the upstream license URL or access token.
package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/drmplay/internal/config"
	"github.com/ManuGH/drmplay/internal/domain/playback"
	"github.com/ManuGH/drmplay/internal/health"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/session"
)

// SessionService is the subset of session.Manager the handlers drive.
type SessionService interface {
	Start(ctx context.Context, p playback.Platform, drmRequired bool) (session.Session, error)
	Stop(id string) error
	Toggle(ctx context.Context, id string, p playback.Platform, drmRequired bool) (session.Session, bool, error)
	Get(id string) (session.Session, error)
	List() []session.Session
	MarkLoaded(id string) (session.Session, error)
	ReportPlaybackError(id, message string) (*playback.PlaybackError, error)
	RelayLicense(ctx context.Context, id, spc, contentID string) (string, error)
}

// ConfigSource returns the configuration currently in force.
type ConfigSource interface {
	Get() config.AppConfig
}

// Deps are the collaborators of Server. Metrics defaults to promhttp.Handler.
type Deps struct {
	Sessions SessionService
	Config   ConfigSource
	Health   *health.Manager
	Metrics  http.Handler
}

// Server serves the relay API.
type Server struct {
	sessions SessionService
	cfg      ConfigSource
	health   *health.Manager
	metrics  http.Handler
	logger   zerolog.Logger
}

// NewServer wires handlers to their collaborators.
func NewServer(deps Deps) *Server {
	s := &Server{
		sessions: deps.Sessions,
		cfg:      deps.Config,
		health:   deps.Health,
		metrics:  deps.Metrics,
		logger:   xglog.WithComponent("api"),
	}
	if s.health == nil {
		s.health = health.NewManager(deps.Config.Get().Version)
	}
	if s.metrics == nil {
		s.metrics = promhttp.Handler()
	}
	return s
}

// Handler returns the routed handler with the middleware stack applied.
// Rate limits and tracing are fixed at construction; a config reload does
// not rebuild the router.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
