package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowlistContains(t *testing.T) {
	allowlist := NewAllowlist([]string{" YourCompany.com ", "localhost", ""}, nil)

	assert.Equal(t, []string{"yourcompany.com", "localhost"}, allowlist.Domains())

	assert.True(t, allowlist.Contains("yourcompany.com"))
	assert.True(t, allowlist.Contains("mail.yourcompany.com"))
	assert.True(t, allowlist.Contains("YOURCOMPANY.COM"))
	assert.True(t, allowlist.Contains("localhost:8080"))
	assert.False(t, allowlist.Contains("example.com"))
	assert.False(t, allowlist.Contains(""))
}

func TestEmptyAllowlist(t *testing.T) {
	allowlist := NewAllowlist(nil, nil)
	assert.False(t, allowlist.Contains("anything.com"))
	assert.Empty(t, allowlist.Domains())
}
