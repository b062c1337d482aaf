package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymousID(t *testing.T) {
	a := AnonymousID("203.0.113.7", "Mozilla/5.0")
	b := AnonymousID("203.0.113.7", "Mozilla/5.0")
	assert.Equal(t, a, b, "same ip and agent must derive the same token")
	assert.NotEmpty(t, a)
	assert.LessOrEqual(t, len(a), 20)

	c := AnonymousID("203.0.113.8", "Mozilla/5.0")
	assert.NotEqual(t, a, c, "different ip must derive a different token")

	d := AnonymousID("203.0.113.7", "curl/8.0")
	assert.NotEqual(t, a, d, "different agent must derive a different token")

	// Long inputs still fit the column.
	long := AnonymousID("2001:0db8:85a3:0000:0000:8a2e:0370:7334", "a very long user agent string that keeps going")
	assert.Len(t, long, 20)
}
