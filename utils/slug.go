package utils

import "regexp"

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValidSlug reports whether s is a URL-safe slug: lowercase letters,
// digits and hyphens only, non-empty.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
