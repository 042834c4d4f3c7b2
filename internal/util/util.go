package util

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// writablePathKeys are checked in order by WritablePath.
var writablePathKeys = []string{"GQLTESTER_WRITABLE_PATH", "WRITABLE_PATH", "writable_path"}

// WritablePath returns the cleaned directory for runtime files (database, logs)
// or an empty string when none is configured.
func WritablePath() string {
	for _, key := range writablePathKeys {
		value, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return filepath.Clean(trimmed)
		}
	}
	return ""
}

// HideAPIKey keeps a few leading and trailing characters of a secret for log output.
func HideAPIKey(apiKey string) string {
	var keep int
	switch n := len(apiKey); {
	case n > 8:
		keep = 4
	case n > 4:
		keep = 2
	case n > 2:
		keep = 1
	default:
		return apiKey
	}
	return apiKey[:keep] + "..." + apiKey[len(apiKey)-keep:]
}

// MaskSensitiveQuery hides the values of token, secret and key parameters in a
// raw query string. Parameter order and untouched pairs are preserved.
func MaskSensitiveQuery(raw string) string {
	if raw == "" {
		return ""
	}
	pairs := strings.Split(raw, "&")
	changed := false
	for i, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		if !isSensitiveParam(unescapeOrRaw(name)) {
			continue
		}
		masked := HideAPIKey(strings.TrimSpace(unescapeOrRaw(value)))
		pairs[i] = name + "=" + url.QueryEscape(masked)
		changed = true
	}
	if !changed {
		return raw
	}
	return strings.Join(pairs, "&")
}

func unescapeOrRaw(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

func isSensitiveParam(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "[]")
	if name == "" {
		return false
	}
	if name == "key" {
		return true
	}
	for _, marker := range []string{"api-key", "apikey", "api_key", "token", "secret"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
