package emailparse

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/utils"
)

var (
	hrefRe    = regexp.MustCompile(`(?i)href=["']?([^"'\s>]+)`)
	bareURLRe = regexp.MustCompile(`https?://[^\s<>"']+`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
)

// Parser converts raw RFC 5322 messages into EmailInput: headers, a
// plain-text body (HTML stripped) and the deduplicated set of extracted links.
type Parser struct {
	text   *utils.TextProcessor
	logger *zap.Logger
}

// NewParser creates a new email parser.
func NewParser(text *utils.TextProcessor, logger *zap.Logger) *Parser {
	return &Parser{
		text:   text,
		logger: logger,
	}
}

// Parse reads one message from r and decodes it for analysis.
func (p *Parser) Parse(r io.Reader) (*core.EmailInput, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	// Links are extracted from the raw content so that href targets survive
	// the HTML stripping applied to the analyzed body text.
	body, raw, err := extractText(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract email body: %w", err)
	}
	body = p.text.SanitizeUTF8(body)

	headers := make(map[string][]string, len(msg.Header))
	for k, v := range msg.Header {
		headers[k] = v
	}

	email := &core.EmailInput{
		Sender:  msg.Header.Get("From"),
		Subject: msg.Header.Get("Subject"),
		Body:    body,
		Headers: headers,
		Links:   ExtractLinks(raw),
	}

	p.logger.Debug("Parsed email",
		zap.String("sender", email.Sender),
		zap.Int("body_length", len(email.Body)),
		zap.Int("link_count", len(email.Links)))

	return email, nil
}

// ParseString decodes a raw message held in a string.
func (p *Parser) ParseString(raw string) (*core.EmailInput, error) {
	return p.Parse(strings.NewReader(raw))
}

// extractText extracts the analyzed text and the raw content from an email
// message. Multipart messages are walked for text parts; text/html parts are
// stripped to plain text in the analyzed body but kept verbatim in the raw
// content.
func extractText(msg *mail.Message) (text, raw string, err error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readSinglePart(msg.Body, contentType)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", "", err
		}
		return string(bodyBytes), string(bodyBytes), nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", "", err
		}
		return string(bodyBytes), string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textBuf bytes.Buffer
	var rawBuf bytes.Buffer

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever text was collected before the malformed part.
			break
		}

		partType := strings.ToLower(part.Header.Get("Content-Type"))
		switch {
		case strings.Contains(partType, "text/plain"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textBuf.Write(partBytes)
			textBuf.WriteString("\n")
			rawBuf.Write(partBytes)
			rawBuf.WriteString("\n")
		case strings.Contains(partType, "text/html"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textBuf.WriteString(StripHTML(string(partBytes)))
			textBuf.WriteString("\n")
			rawBuf.Write(partBytes)
			rawBuf.WriteString("\n")
		}
		// Skip nested multiparts and attachments.
	}

	return textBuf.String(), rawBuf.String(), nil
}

func readSinglePart(r io.Reader, contentType string) (text, raw string, err error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}
	body := string(bodyBytes)
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return StripHTML(body), body, nil
	}
	return body, body, nil
}

// StripHTML removes markup tags and collapses whitespace.
func StripHTML(html string) string {
	stripped := tagRe.ReplaceAllString(html, "")
	return strings.Join(strings.Fields(stripped), " ")
}

// ExtractLinks collects href targets and bare URLs from the content, in order
// of first appearance, deduplicated.
func ExtractLinks(content string) []string {
	var links []string
	seen := make(map[string]bool)

	add := func(link string) {
		link = strings.TrimRight(link, ".,;")
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	}

	for _, m := range hrefRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, m := range bareURLRe.FindAllString(content, -1) {
		add(m)
	}

	return links
}
