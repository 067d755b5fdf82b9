// Package env reads process-level settings that sit outside the TATAME_*
// config, such as the log format and the platform-assigned host name.
package env

import (
	"os"
	"strings"
)

// First returns the first non-blank value among keys, or "".
func First(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// Get is First for a single key with a fallback.
func Get(key, fallback string) string {
	if v := First(key); v != "" {
		return v
	}
	return fallback
}
