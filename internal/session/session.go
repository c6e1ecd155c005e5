// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session owns playback session state: the explicit replacement for
// a global "is playing" flag and current source descriptor.
package session

import (
	"errors"
	"time"

	"github.com/ManuGH/drmplay/internal/domain/playback"
)

// State is the client-visible lifecycle of a session.
type State string

const (
	StateLoading State = "LOADING"
	StatePlaying State = "PLAYING"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned when a license exchange resolves after its
	// session was stopped or replaced. The license is discarded.
	ErrSessionClosed    = errors.New("session closed before license exchange completed")
	ErrNotProtected     = errors.New("session has no drm configuration")
	ErrCapacityExceeded = errors.New("session capacity exceeded")
	ErrStartRateLimited = errors.New("session start rate limited")
	ErrManagerClosed    = errors.New("session manager closed")
)

// Session is an immutable snapshot. Transitions produce a new value in the
// registry; values already handed out never change.
type Session struct {
	ID          string
	Identity    playback.StreamIdentity
	Platform    playback.Platform
	DRMRequired bool
	Descriptor  playback.SourceDescriptor
	State       State
	StartedAt   time.Time
	LoadedAt    time.Time
}

// Protected reports whether the session needs a DRM handshake.
func (s Session) Protected() bool {
	return s.Descriptor.DRM != nil
}

func (s Session) withState(state State, now time.Time) Session {
	next := s
	next.State = state
	if state == StatePlaying && next.LoadedAt.IsZero() {
		next.LoadedAt = now
	}
	return next
}
