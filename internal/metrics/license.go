// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	licenseRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drmplay_license_requests_total",
		Help: "License exchanges by DRM scheme and outcome",
	}, []string{"scheme", "outcome"}) // outcome=success|transport_error|server_error|rejected

	licenseRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drmplay_license_request_duration_seconds",
		Help:    "Latency of one license exchange against the upstream license endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"scheme"})

	licenseResponseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drmplay_license_response_bytes",
		Help:    "Size of raw license payloads returned by the upstream endpoint",
		Buckets: prometheus.ExponentialBuckets(64, 4, 6),
	}, []string{"scheme"})
)

// License outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeServerError    = "server_error"
	OutcomeRejected       = "rejected"
)

func schemeLabel(scheme string) string {
	if scheme == "" {
		return "unknown"
	}
	return scheme
}

// RecordLicenseRequest counts one finished license exchange.
func RecordLicenseRequest(scheme, outcome string, elapsed time.Duration) {
	scheme = schemeLabel(scheme)
	licenseRequestsTotal.WithLabelValues(scheme, outcome).Inc()
	if outcome != OutcomeRejected {
		licenseRequestDuration.WithLabelValues(scheme).Observe(elapsed.Seconds())
	}
}

// ObserveLicenseSize records the raw size of a successful license payload.
func ObserveLicenseSize(scheme string, n int) {
	licenseResponseBytes.WithLabelValues(schemeLabel(scheme)).Observe(float64(n))
}
