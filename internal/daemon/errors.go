// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import "errors"

// Wiring and lifecycle errors.
var (
	ErrMissingAPIHandler = errors.New("daemon: relay API handler not configured")
	ErrMissingManager    = errors.New("daemon: server manager not configured")
	ErrManagerNotStarted = errors.New("daemon: shutdown before start")
)
