// Package jobs names generation jobs.
package jobs

import (
	"strings"

	"github.com/google/uuid"
)

// GenerationPrefix is prepended to every generation job ID.
const GenerationPrefix = "gen-"

// NewID returns a new random job ID with the given prefix, e.g. "gen-".
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// Normalize accepts a job ID with or without its prefix and returns the
// prefixed form.
func Normalize(id, prefix string) string {
	if strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}

// Valid reports whether id is a prefixed UUID.
func Valid(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	return uuid.Validate(strings.TrimPrefix(id, prefix)) == nil
}
