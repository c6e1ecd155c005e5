// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/drmplay/internal/domain/playback"
	xglog "github.com/ManuGH/drmplay/internal/log"
	"github.com/ManuGH/drmplay/internal/metrics"
)

// Resolver builds a fresh descriptor for a session start.
type Resolver interface {
	Resolve(id playback.StreamIdentity, p playback.Platform, drmRequired bool) (playback.SourceDescriptor, error)
}

// IdentitySource returns the identity in force when a session starts.
// A reload only affects sessions started afterwards.
type IdentitySource interface {
	Identity() playback.StreamIdentity
}

// StaticIdentity is an IdentitySource that never changes.
type StaticIdentity playback.StreamIdentity

// Identity returns the wrapped identity.
func (s StaticIdentity) Identity() playback.StreamIdentity { return playback.StreamIdentity(s) }

// Options bound the registry. Zero values disable the corresponding limit.
type Options struct {
	MaxSessions int
	StartRate   rate.Limit
	StartBurst  int
	Logger      *zerolog.Logger
	Now         func() time.Time
}

// Manager is the registry of live sessions.
type Manager struct {
	resolver   Resolver
	identities IdentitySource
	limiter    *rate.Limiter
	maxActive  int
	logger     zerolog.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
	closed   bool
	inflight sync.WaitGroup
}

// NewManager returns an empty registry.
func NewManager(resolver Resolver, identities IdentitySource, opts Options) *Manager {
	m := &Manager{
		resolver:   resolver,
		identities: identities,
		maxActive:  opts.MaxSessions,
		logger:     xglog.WithComponent("session"),
		now:        time.Now,
		sessions:   make(map[string]Session),
	}
	if opts.StartRate > 0 {
		burst := opts.StartBurst
		if burst <= 0 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(opts.StartRate, burst)
	}
	if opts.Logger != nil {
		m.logger = *opts.Logger
	}
	if opts.Now != nil {
		m.now = opts.Now
	}
	return m
}

// Start resolves a fresh descriptor and registers a new session in LOADING.
func (m *Manager) Start(ctx context.Context, p playback.Platform, drmRequired bool) (Session, error) {
	if m.limiter != nil && !m.limiter.Allow() {
		metrics.RecordSessionRejected("rate")
		return Session{}, ErrStartRateLimited
	}

	id := m.identities.Identity()
	desc, err := m.resolver.Resolve(id, p, drmRequired)
	if err != nil {
		metrics.RecordSessionRejected("config")
		return Session{}, fmt.Errorf("resolve source: %w", err)
	}

	s := Session{
		ID:          uuid.NewString(),
		Identity:    id,
		Platform:    p,
		DRMRequired: drmRequired,
		Descriptor:  desc,
		State:       StateLoading,
		StartedAt:   m.now(),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Session{}, ErrManagerClosed
	}
	if m.maxActive > 0 && len(m.sessions) >= m.maxActive {
		m.mu.Unlock()
		metrics.RecordSessionRejected("capacity")
		return Session{}, ErrCapacityExceeded
	}
	m.sessions[s.ID] = s
	active := len(m.sessions)
	m.mu.Unlock()

	scheme := ""
	if desc.DRM != nil {
		scheme = string(desc.DRM.Scheme)
	}
	metrics.RecordSessionStart(string(p), string(desc.Format), scheme)
	metrics.SetActiveSessions(active)
	l := xglog.WithContext(xglog.ContextWithSessionID(ctx, s.ID), m.logger)
	l.Info().
		Str(xglog.FieldEvent, "session.started").
		Str(xglog.FieldPlatform, string(p)).
		Str(xglog.FieldFormat, string(desc.Format)).
		Str(xglog.FieldScheme, scheme).
		Str(xglog.FieldOrgID, id.OrgID).
		Str(xglog.FieldAssetID, id.AssetID).
		Msg("playback session started")
	return s, nil
}

// Stop removes the session. Any exchange still in flight for it will have
// its result discarded.
func (m *Manager) Stop(id string) error {
	if _, err := m.remove(id, "stopped"); err != nil {
		return err
	}
	m.logger.Info().
		Str(xglog.FieldEvent, "session.stopped").
		Str(xglog.FieldSessionID, id).
		Msg("playback session stopped")
	return nil
}

// Toggle mirrors a play/stop button: a live session is stopped, otherwise a
// new one is started. The returned bool is true when a session was started.
func (m *Manager) Toggle(ctx context.Context, id string, p playback.Platform, drmRequired bool) (Session, bool, error) {
	if id != "" {
		err := m.Stop(id)
		if err == nil {
			return Session{}, false, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return Session{}, false, err
		}
	}
	s, err := m.Start(ctx, p, drmRequired)
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

// MarkLoaded moves a session from LOADING to PLAYING.
func (m *Manager) MarkLoaded(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	next := s.withState(StatePlaying, m.now())
	m.sessions[id] = next
	return next, nil
}

// ReportPlaybackError resets the session to "not playing" and returns the
// message to surface to the user.
func (m *Manager) ReportPlaybackError(id, message string) (*playback.PlaybackError, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = playback.DefaultPlaybackMessage
	}
	if _, err := m.remove(id, "playback_error"); err != nil {
		return nil, err
	}
	perr := &playback.PlaybackError{SessionID: id, Message: message}
	m.logger.Warn().
		Err(perr).
		Str(xglog.FieldEvent, "session.playback_error").
		Str(xglog.FieldSessionID, id).
		Msg("playback error reported, session reset")
	return perr, nil
}

// AcquireLicense runs the session's license callback against its license
// endpoint. The exchange is not cancelled by Stop; a result arriving after
// teardown is dropped and ErrSessionClosed returned.
func (m *Manager) AcquireLicense(ctx context.Context, id string, challenge []byte, contentID string) (string, error) {
	return m.exchange(ctx, id, func(ctx context.Context, drm *playback.DRMConfig) (string, error) {
		return drm.Licenser.AcquireLicense(ctx, challenge, contentID, drm.LicenseEndpoint)
	})
}

// RelayLicense is AcquireLicense for spc text received from a device. When
// the session's licenser can relay text, spc is forwarded unchanged;
// otherwise it must be standard base64 and is decoded first.
func (m *Manager) RelayLicense(ctx context.Context, id, spc, contentID string) (string, error) {
	return m.exchange(ctx, id, func(ctx context.Context, drm *playback.DRMConfig) (string, error) {
		if relayer, ok := drm.Licenser.(playback.SPCRelayer); ok {
			return relayer.RelaySPC(ctx, spc, contentID, drm.LicenseEndpoint)
		}
		challenge, err := base64.StdEncoding.DecodeString(spc)
		if err != nil {
			return "", &playback.ConfigurationError{Field: "spc", Reason: "must be standard base64"}
		}
		return drm.Licenser.AcquireLicense(ctx, challenge, contentID, drm.LicenseEndpoint)
	})
}

func (m *Manager) exchange(ctx context.Context, id string, fn func(context.Context, *playback.DRMConfig) (string, error)) (string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrManagerClosed
	}
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return "", ErrSessionNotFound
	}
	if s.Descriptor.DRM == nil {
		m.mu.Unlock()
		return "", ErrNotProtected
	}
	m.inflight.Add(1)
	m.mu.Unlock()
	defer m.inflight.Done()

	ctx = xglog.ContextWithSessionID(ctx, id)
	license, err := fn(ctx, s.Descriptor.DRM)

	if !m.isCurrent(s) {
		metrics.RecordLateLicenseResult()
		l := xglog.WithContext(ctx, m.logger)
		l.Debug().
			Str(xglog.FieldEvent, "license.late_result").
			Bool("failed", err != nil).
			Msg("license exchange resolved after session teardown, result discarded")
		return "", ErrSessionClosed
	}
	if err != nil {
		return "", err
	}
	return license, nil
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// List returns all sessions ordered by start time.
func (m *Manager) List() []Session {
	m.mu.Lock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Close rejects new work, drops every session and waits for in-flight
// exchanges until ctx is done.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	n := len(m.sessions)
	m.sessions = make(map[string]Session)
	m.mu.Unlock()

	for range n {
		metrics.RecordSessionEnd("shutdown")
	}
	metrics.SetActiveSessions(0)

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("license exchange drain timeout: %w", ctx.Err())
	}
}

func (m *Manager) remove(id, reason string) (Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	active := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	metrics.RecordSessionEnd(reason)
	metrics.SetActiveSessions(active)
	return s, nil
}

// isCurrent reports whether s is still registered under its ID.
func (m *Manager) isCurrent(s Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[s.ID]
	return ok && !m.closed
}
