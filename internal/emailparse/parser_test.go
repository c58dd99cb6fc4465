package emailparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/utils"
)

func newTestParser() *Parser {
	return NewParser(utils.NewTextProcessor(zap.NewNop()), zap.NewNop())
}

func TestParsePlainTextEmail(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"To: recipient@example.com\r\n" +
		"Subject: Test Email\r\n" +
		"Return-Path: <sender@example.com>\r\n" +
		"\r\n" +
		"Hello, this is a test. Visit https://example.com/page for details.\r\n"

	email, err := newTestParser().ParseString(raw)
	require.NoError(t, err)

	assert.Equal(t, "sender@example.com", email.Sender)
	assert.Equal(t, "Test Email", email.Subject)
	assert.Contains(t, email.Body, "this is a test")
	assert.Equal(t, []string{"https://example.com/page"}, email.Links)
	assert.Equal(t, "<sender@example.com>", email.Header("Return-Path"))
}

func TestParseHTMLEmail(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Offer\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		`<html><body><p>Click <a href="https://deal.example.net/buy">here</a> now</p></body></html>`

	email, err := newTestParser().ParseString(raw)
	require.NoError(t, err)

	// Markup is stripped from the body but the href target is still extracted.
	assert.Equal(t, "Click here now", email.Body)
	assert.Equal(t, []string{"https://deal.example.net/buy"}, email.Links)
}

func TestParseMultipartEmail(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Multipart\r\n" +
		"Content-Type: multipart/alternative; boundary=\"BOUNDARY\"\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"This is the plain text part.\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		`<p>This is the <a href="https://test.com">HTML</a> part.</p>` + "\r\n" +
		"--BOUNDARY--\r\n"

	email, err := newTestParser().ParseString(raw)
	require.NoError(t, err)

	assert.Contains(t, email.Body, "This is the plain text part.")
	assert.Contains(t, email.Body, "This is the HTML part.")
	assert.NotContains(t, email.Body, "<a href")
	assert.Equal(t, []string{"https://test.com"}, email.Links)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := newTestParser().ParseString("this is not an email at all")
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Hello World!",
		StripHTML("<html><body><p>Hello <b>World</b>!</p></body></html>"))
	assert.Equal(t, "plain already", StripHTML("plain   already"))
	assert.Equal(t, "", StripHTML("<br/>"))
}

func TestExtractLinks(t *testing.T) {
	content := `Check https://example.com/page and ` +
		`<a href="https://link.com">Click</a> and http://another-site.net.`

	links := ExtractLinks(content)

	// href targets first, then bare URLs, trailing punctuation trimmed.
	assert.Equal(t, []string{
		"https://link.com",
		"https://example.com/page",
		"http://another-site.net",
	}, links)
}

func TestExtractLinksDeduplicates(t *testing.T) {
	content := `<a href="https://example.com">one</a> and again https://example.com`
	assert.Equal(t, []string{"https://example.com"}, ExtractLinks(content))
}

func TestExtractLinksEmpty(t *testing.T) {
	assert.Empty(t, ExtractLinks("no links here"))
}
