package utils

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// MaxURLLength caps article URLs at the practical browser limit.
const MaxURLLength = 2083

var idExpr = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateID checks an opaque record id: non-empty, url-safe characters
// only, at most 64 bytes.
func ValidateID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return idExpr.MatchString(id)
}

// ValidateURL requires an absolute http(s) URL within MaxURLLength.
func ValidateURL(raw string) bool {
	if raw == "" || len(raw) > MaxURLLength {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateDate accepts a YYYY-MM-DD calendar date.
func ValidateDate(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", raw)
	return err == nil
}

// RequiredText checks a mandatory free-text field against a length cap.
// A cap of 0 means unbounded.
func RequiredText(s string, maxLen int) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if maxLen > 0 && len(trimmed) > maxLen {
		return false
	}
	return true
}
