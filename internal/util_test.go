package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDottedQuad(t *testing.T) {
	assert.True(t, IsDottedQuad("1.2.3.4"))
	assert.True(t, IsDottedQuad("192.168.100.254"))
	// 只看格式，不看取值范围
	assert.True(t, IsDottedQuad("999.0.0.1"))

	assert.False(t, IsDottedQuad("1.2.3"))
	assert.False(t, IsDottedQuad("1.2.3.4.5"))
	assert.False(t, IsDottedQuad("1234.1.1.1"))
	assert.False(t, IsDottedQuad("1.2.3.com"))
	assert.False(t, IsDottedQuad("::1"))
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeDomain("Example.COM."))
	assert.Equal(t, "example.com", NormalizeDomain("example.com"))
}

func TestDedup(t *testing.T) {
	in := []string{"google", "github", "google", "apple", "github"}
	assert.Equal(t, []string{"google", "github", "apple"}, Dedup(in))
	assert.Empty(t, Dedup(nil))
}
