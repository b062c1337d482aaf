package utils

import "github.com/microcosm-cc/bluemonday"

// Posts and comments accept limited HTML, so the UGC policy keeps formatting
// tags while stripping scripts and event handlers.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user-submitted content. Applied to post
// titles, excerpts, bodies and comment text before they are stored.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
