// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ManuGH/drmplay/internal/config"
	"github.com/ManuGH/drmplay/internal/domain/playback"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/source"
	"github.com/ManuGH/drmplay/internal/version"
)

// runResolveCLI prints the descriptor a session would receive. It performs
// no network I/O; the licenser is never invoked.
func runResolveCLI(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("drmplay resolve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	platform := fs.String("platform", "", "device platform: ios or android")
	drm := fs.Bool("drm", true, "require DRM")
	file := fs.String("config", "", "path to YAML configuration file")
	showSecrets := fs.Bool("show-secrets", false, "print the license URL with its access token")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := playback.ParsePlatform(*platform)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	cfg, err := config.NewLoader(strings.TrimSpace(*file), version.Version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error:\n  %v\n", err)
		return 1
	}

	desc, err := source.NewResolver(cfg.SourceEndpoints(), unusedLicenser).Resolve(cfg.StreamIdentity(), p, *drm)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if desc.DRM != nil && !*showSecrets {
		desc.DRM.LicenseEndpoint = xglog.RedactURL(desc.DRM.LicenseEndpoint)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(desc); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

var unusedLicenser = playback.LicenseFunc(func(_ context.Context, _ []byte, _, _ string) (string, error) {
	return "", fmt.Errorf("license exchange is not available from the CLI")
})
