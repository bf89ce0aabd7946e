package scorm

import (
	"regexp"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	slugHyphenRuns = regexp.MustCompile(`-+`)
)

// Slugify turns arbitrary title text into a filesystem- and URL-safe token.
// Runs of disallowed characters collapse to a single hyphen and leading or
// trailing hyphens and dots are trimmed. An empty result yields fallback.
func Slugify(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	value = slugDisallowed.ReplaceAllString(value, "-")
	value = slugHyphenRuns.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-.")
	if value == "" {
		return fallback
	}
	return value
}
