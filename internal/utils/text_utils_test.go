package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "abc", tp.TruncateText("abcdef", 3))
	assert.Equal(t, "abcdef", tp.TruncateText("abcdef", 0))

	// Truncation never splits a multi-byte rune.
	truncated := tp.TruncateText("héllo", 2)
	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, "h", truncated)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))

	dirty := "bad" + string([]byte{0xff, 0xfe}) + "bytes"
	sanitized := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(sanitized))
	assert.Equal(t, "badbytes", sanitized)
}
