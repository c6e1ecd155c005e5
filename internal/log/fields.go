// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldEvent     = "event"

	// Playback fields
	FieldPlatform  = "platform"
	FieldScheme    = "drm_type"
	FieldFormat    = "manifest_format"
	FieldContentID = "content_id"
	FieldAssetID   = "asset_id"
	FieldOrgID     = "org_id"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldURL        = "url"
	FieldDurationMS = "duration_ms"
	FieldBytes      = "bytes"
)
