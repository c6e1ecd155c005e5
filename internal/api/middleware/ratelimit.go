// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/drmplay/internal/api/problem"
)

// RateLimitConfig bounds requests per client within a sliding window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration // defaults to one minute
	// Key selects the bucket; nil means the client IP.
	Key func(r *http.Request) (string, error)
}

// RateLimit rejects requests over the limit with a 429 problem and a
// Retry-After of one window.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Key == nil {
		cfg.Key = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(max(1, int(cfg.Window.Seconds())))

	rejected := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		problem.Write(w, r, http.StatusTooManyRequests, "system/rate_limited", "Too Many Requests", "RATE_LIMITED",
			"request rate for this client exceeded; retry after "+retryAfter+"s", nil)
	}
	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(cfg.Key),
		httprate.WithLimitHandler(rejected),
	)
}
