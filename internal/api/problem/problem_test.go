// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/drmplay/internal/log"
)

func TestWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc/license", nil)
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusBadGateway, "license/upstream", "Bad Gateway", "LICENSE_UPSTREAM", "license server returned 500",
		map[string]any{"upstreamStatus": 500, "status": 200})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "license/upstream", body["type"])
	assert.Equal(t, "LICENSE_UPSTREAM", body["code"])
	assert.Equal(t, float64(502), body["status"], "reserved key in extras must not override")
	assert.Equal(t, float64(500), body["upstreamStatus"])
	assert.Equal(t, "req-1", body[JSONKeyRequestID])
	assert.Equal(t, "/api/v1/sessions/abc/license", body["instance"])
}
