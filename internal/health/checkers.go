// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"

	"github.com/ManuGH/drmplay/internal/domain/playback"
)

// IdentitySource is satisfied by the config holder.
type IdentitySource interface {
	Identity() playback.StreamIdentity
}

// IdentityChecker reports unhealthy while the stream identity is incomplete,
// since no session could start.
type IdentityChecker struct {
	source IdentitySource
}

func NewIdentityChecker(source IdentitySource) *IdentityChecker {
	return &IdentityChecker{source: source}
}

func (c *IdentityChecker) Name() string { return "identity" }

func (c *IdentityChecker) Check(context.Context) CheckResult {
	id := c.source.Identity()
	if err := id.Validate(); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: id.String()}
}

// CapacityChecker degrades when the session registry is full.
type CapacityChecker struct {
	active func() int
	max    int
}

// NewCapacityChecker watches active against max. A max of zero means unbounded.
func NewCapacityChecker(active func() int, maxSessions int) *CapacityChecker {
	return &CapacityChecker{active: active, max: maxSessions}
}

func (c *CapacityChecker) Name() string { return "sessions" }

func (c *CapacityChecker) Check(context.Context) CheckResult {
	n := c.active()
	if c.max > 0 && n >= c.max {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("%d/%d sessions, new starts rejected", n, c.max)}
	}
	if c.max > 0 {
		return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d/%d sessions", n, c.max)}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d sessions", n)}
}
