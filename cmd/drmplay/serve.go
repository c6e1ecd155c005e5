// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ManuGH/drmplay/internal/api"
	"github.com/ManuGH/drmplay/internal/config"
	"github.com/ManuGH/drmplay/internal/daemon"
	"github.com/ManuGH/drmplay/internal/health"
	"github.com/ManuGH/drmplay/internal/license"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/session"
	"github.com/ManuGH/drmplay/internal/source"
	"github.com/ManuGH/drmplay/internal/telemetry"
	"github.com/ManuGH/drmplay/internal/version"
)

func serve(ctx context.Context, configPath string) error {
	logger := xglog.WithComponent("daemon")

	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger = xglog.WithComponent("daemon")

	src := "env+defaults"
	if configPath != "" {
		src = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", src).
		Str("path", configPath).
		Str("stream", cfg.StreamIdentity().String()).
		Bool("drm_required", cfg.Playback.DRMRequired).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.ExporterType,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	holder := config.NewConfigHolder(cfg, loader)

	broker := license.NewBroker(license.Config{
		Timeout:          cfg.License.Timeout,
		MaxResponseBytes: cfg.License.MaxResponseBytes,
	})
	resolver := source.NewResolver(cfg.SourceEndpoints(), broker)
	sessions := session.NewManager(resolver, holder, session.Options{
		MaxSessions: cfg.Sessions.Max,
		StartRate:   rate.Limit(cfg.Sessions.StartRate),
		StartBurst:  cfg.Sessions.StartBurst,
	})

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewIdentityChecker(holder))
	hm.RegisterChecker(health.NewCapacityChecker(func() int { return len(sessions.List()) }, cfg.Sessions.Max))

	srv := api.NewServer(api.Deps{Sessions: sessions, Config: holder, Health: hm})

	mgr, err := daemon.NewManager(
		daemon.DefaultServerConfig(cfg.API.ListenAddr, cfg.License.Timeout),
		daemon.Deps{Logger: logger, APIHandler: srv.Handler(), Health: hm},
	)
	if err != nil {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return fmt.Errorf("create daemon manager: %w", err)
	}
	// LIFO: sessions drain before the tracer flushes.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("sessions", sessions.Close)

	return daemon.NewApp(logger, mgr, holder).Run(ctx)
}
