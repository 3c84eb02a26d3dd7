package domain

import (
	"net/url"
	"strings"
)

// CanonicalURL validates an absolute http(s) URL and strips a single trailing
// slash. Both stored product URLs and incoming referring URLs pass through
// this, so equality comparison is enough to match them.
func CanonicalURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrInvalidURL
	}
	return strings.TrimSuffix(trimmed, "/"), nil
}
