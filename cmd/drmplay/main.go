// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command drmplay serves the DRM playback relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/drmplay/internal/config"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		// Subcommands print to stdout; keep log lines out of it.
		xglog.Configure(xglog.Config{Level: "warn", Output: os.Stderr, Service: config.DefaultLogService, Version: version.Version})
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:], os.Stdout, os.Stderr))
		case "resolve":
			os.Exit(runResolveCLI(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML); env "+config.EnvPrefix+"CONFIG")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: config.DefaultLogService, Version: version.Version})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(config.EnvPrefix + "CONFIG"))
	}

	if err := serve(ctx, path); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.exit_error").Msg("drmplay stopped with error")
		stop()
		os.Exit(1)
	}
}
