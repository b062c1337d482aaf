package utils

import "encoding/base64"

// AnonymousIDLength caps anonymous tokens so they fit the likes column.
// Client-supplied tokens are truncated to the same bound before storage.
const AnonymousIDLength = 20

// AnonymousID derives a pseudo-identity for an unauthenticated visitor from
// its IP and user-agent. The token is stable for repeated requests over the
// same network path but not unique: NAT'd users sharing a browser fingerprint
// collide. It is a deduplication key for the like toggle, not a security
// boundary.
func AnonymousID(ip, userAgent string) string {
	token := base64.StdEncoding.EncodeToString([]byte(ip + "|" + userAgent))
	if len(token) > AnonymousIDLength {
		token = token[:AnonymousIDLength]
	}
	return token
}
