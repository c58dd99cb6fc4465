package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/config"
	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/emailparse"
	"github.com/mikey/phishing-filter/internal/utils"
)

// SMTPFilter is a content filter: it accepts messages over SMTP, analyzes
// them, injects phishing verdict headers and relays the tagged message to the
// downstream MTA.
type SMTPFilter struct {
	analyzer *core.AnalyzerService
	parser   *emailparse.Parser
	text     *utils.TextProcessor
	logger   *zap.Logger
	cfg      config.SMTPConfig
	server   *smtp.Server
}

// NewSMTPFilter creates a new SMTP content filter.
func NewSMTPFilter(
	analyzer *core.AnalyzerService,
	parser *emailparse.Parser,
	text *utils.TextProcessor,
	logger *zap.Logger,
	cfg config.SMTPConfig,
) *SMTPFilter {
	return &SMTPFilter{
		analyzer: analyzer,
		parser:   parser,
		text:     text,
		logger:   logger,
		cfg:      cfg,
	}
}

// Start starts the SMTP server.
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP content filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server.
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes one decoded email. Used for testing and direct calls.
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.AnalysisResult, error) {
	return f.analyzer.Analyze(ctx, email), nil
}

// decode parses a raw message for analysis, falling back to the envelope
// sender when the From header is empty and capping the body at the configured
// maximum size.
func (f *SMTPFilter) decode(rawData []byte, envelopeSender string) (*core.EmailInput, error) {
	email, err := f.parser.Parse(bytes.NewReader(rawData))
	if err != nil {
		return nil, err
	}
	if email.Sender == "" {
		email.Sender = envelopeSender
	}
	email.Body = f.text.ProcessText(email.Body, f.cfg.MaxBodySize)
	return email, nil
}

// relay sends the tagged message to the downstream MTA.
func (f *SMTPFilter) relay(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", f.cfg.RelayAddress, f.cfg.RelayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Logout handles SMTP logout (nothing to release)
func (s *smtpSession) Logout() error {
	return nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message, tags it and relays it onward.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	email, err := s.filter.decode(rawData, s.sender)
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := s.filter.analyzer.Analyze(ctx, email)

	if result.IsPhishing && s.filter.cfg.BlockPhishing {
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", email.Sender),
			zap.Float64("risk_score", result.RiskScore),
			zap.String("reason", result.Explanation))
		return fmt.Errorf("550 Rejected as phishing (risk score: %.2f)", result.RiskScore)
	}

	tagged := s.tagMessage(rawData, result)

	if s.filter.cfg.RelayEnabled {
		if err := s.filter.relay(s.sender, s.recipients, tagged); err != nil {
			s.filter.logger.Error("Failed to relay tagged email",
				zap.Error(err),
				zap.String("sender", email.Sender))
			return err
		}
	} else {
		s.filter.logger.Info("Relay disabled, message accepted without forwarding",
			zap.String("sender", email.Sender),
			zap.Bool("is_phishing", result.IsPhishing))
	}

	return nil
}

// tagMessage prepends the verdict headers to the raw message, preserving the
// original headers and MIME structure.
func (s *smtpSession) tagMessage(rawData []byte, result *core.AnalysisResult) []byte {
	var tagged bytes.Buffer

	fmt.Fprintf(&tagged, "%s: %t\r\n", s.filter.cfg.StatusHeader, result.IsPhishing)
	fmt.Fprintf(&tagged, "%s: %.4f\r\n", s.filter.cfg.ScoreHeader, result.RiskScore)
	fmt.Fprintf(&tagged, "%s: %s\r\n", s.filter.cfg.ReasonHeader, sanitizeHeaderValue(result.Explanation))

	tagged.Write(rawData)
	return tagged.Bytes()
}

// sanitizeHeaderValue keeps injected header values single-line.
func sanitizeHeaderValue(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}
