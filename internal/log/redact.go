// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import "net/url"

// sensitiveQueryKeys are masked before a URL reaches a log line or trace.
var sensitiveQueryKeys = []string{"access_token", "token", "api_key"}

// RedactURL removes user info and masks credential query parameters.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url-redacted"
	}
	u.User = nil
	if u.RawQuery == "" {
		return u.String()
	}
	q := u.Query()
	for _, key := range sensitiveQueryKeys {
		if q.Has(key) {
			q.Set(key, "***")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
