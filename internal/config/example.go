// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	xglog "github.com/ManuGH/drmplay/internal/log"
)

// ErrConfigExists is returned by WriteExample when path is already present.
var ErrConfigExists = errors.New("config file already exists")

// ExampleFile is the sample written by `drmplay config init`.
func ExampleFile() FileConfig {
	fc := ToFileConfig(Defaults())
	fc.Identity = &IdentityFile{
		OrgID:       "your-org-id",
		AssetID:     "your-asset-id",
		AccessToken: "replace-me",
	}
	return fc
}

// ToFileConfig converts cfg back into the on-disk shape. Loading the
// result yields cfg again.
func ToFileConfig(cfg AppConfig) FileConfig {
	drm := cfg.Playback.DRMRequired
	maxBytes := cfg.License.MaxResponseBytes
	maxSessions := cfg.Sessions.Max
	rate := cfg.Sessions.StartRate
	burst := cfg.Sessions.StartBurst
	reqs := cfg.API.RateLimitRequests
	trustProxy := cfg.API.TrustProxyHeaders
	enabled := cfg.Telemetry.Enabled
	sampling := cfg.Telemetry.SamplingRate

	return FileConfig{
		Identity: &IdentityFile{
			OrgID:       cfg.Identity.OrgID,
			AssetID:     cfg.Identity.AssetID,
			AccessToken: cfg.Identity.AccessToken,
		},
		Endpoints: &EndpointsFile{
			ManifestBaseURL:        cfg.Endpoints.ManifestBaseURL,
			LicenseBaseURL:         cfg.Endpoints.LicenseBaseURL,
			FairPlayCertificateURL: cfg.Endpoints.FairPlayCertificateURL,
		},
		Playback: &PlaybackFile{DRMRequired: &drm},
		License: &LicenseFile{
			Timeout:          cfg.License.Timeout.String(),
			MaxResponseBytes: &maxBytes,
		},
		Sessions: &SessionsFile{Max: &maxSessions, StartRate: &rate, StartBurst: &burst},
		API: &APIFile{
			ListenAddr:        cfg.API.ListenAddr,
			RateLimit:         &RateLimitFile{Requests: &reqs, Window: cfg.API.RateLimitWindow.String()},
			TrustProxyHeaders: &trustProxy,
		},
		Chat: &ChatFile{
			StylesheetURL: cfg.Chat.StylesheetURL,
			ScriptURL:     cfg.Chat.ScriptURL,
			Username:      cfg.Chat.Username,
		},
		Telemetry: &TelemetryFile{
			Enabled:      &enabled,
			Exporter:     cfg.Telemetry.ExporterType,
			Endpoint:     cfg.Telemetry.Endpoint,
			SamplingRate: &sampling,
			Environment:  cfg.Telemetry.Environment,
		},
		LogLevel:   cfg.LogLevel,
		LogService: cfg.LogService,
	}
}

// EncodeExample writes the example YAML to w.
func EncodeExample(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ExampleFile()); err != nil {
		return fmt.Errorf("encode example config: %w", err)
	}
	return enc.Close()
}

// WriteExample writes the example config to path atomically with mode 0600.
// It refuses to replace an existing file unless force is set.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			l := xglog.WithComponent("config")
			l.Debug().Err(err).Msg("cleanup pending config file")
		}
	}()

	if err := EncodeExample(pendingFile); err != nil {
		return err
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	return nil
}
