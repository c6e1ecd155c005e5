// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "drmplay_sessions_active",
		Help: "Playback sessions currently registered",
	})

	sessionStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drmplay_session_starts_total",
		Help: "Playback session starts by platform, manifest format and DRM scheme",
	}, []string{"platform", "format", "scheme"}) // scheme=none when unprotected

	sessionRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drmplay_session_rejections_total",
		Help: "Session starts refused before a descriptor was built",
	}, []string{"reason"}) // reason=capacity|rate|config

	sessionEndsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drmplay_session_ends_total",
		Help: "Playback sessions removed, by reason",
	}, []string{"reason"}) // reason=stopped|playback_error|shutdown

	lateLicenseResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drmplay_late_license_results_total",
		Help: "License exchanges that resolved after their session was torn down",
	})
)

// SetActiveSessions records the registry size.
func SetActiveSessions(n int) {
	sessionsActive.Set(float64(n))
}

// RecordSessionStart counts a started session.
func RecordSessionStart(platform, format, scheme string) {
	if scheme == "" {
		scheme = "none"
	}
	sessionStartsTotal.WithLabelValues(platform, format, scheme).Inc()
}

// RecordSessionRejected counts a refused start.
func RecordSessionRejected(reason string) {
	sessionRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordSessionEnd counts a removed session.
func RecordSessionEnd(reason string) {
	sessionEndsTotal.WithLabelValues(reason).Inc()
}

// RecordLateLicenseResult counts a discarded late exchange.
func RecordLateLicenseResult() {
	lateLicenseResultsTotal.Inc()
}
