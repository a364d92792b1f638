package plan

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSlugLength caps the slug part of an archive name.
const MaxSlugLength = 50

var (
	disallowedChars = regexp.MustCompile(`[^A-Za-z0-9\s-]+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	hyphenRun       = regexp.MustCompile(`-{2,}`)
)

// Slugify turns free text into a lowercase, hyphen-separated identifier
// containing only [a-z0-9-], at most MaxSlugLength characters long.
func Slugify(s string) string {
	s = disallowedChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.ToLower(s)
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return truncateSlug(s, MaxSlugLength)
}

// truncateSlug cuts at the last hyphen inside the limit when that hyphen
// lies past the midpoint, and hard-cuts otherwise.
func truncateSlug(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndex(cut, "-"); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, "-")
}

// SessionSlug is the last-resort name derived from a session identifier,
// or from a random identifier when the session is unknown.
func SessionSlug(sessionID string) string {
	id := Slugify(sessionID)
	if id == "" {
		id = uuid.New().String()
	}
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "session-" + id
}
