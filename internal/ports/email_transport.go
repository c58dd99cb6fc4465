package ports

import (
	"context"

	"github.com/mikey/phishing-filter/internal/core"
)

// EmailTransport defines the interface for a transport surface that feeds
// emails into the analyzer (HTTP API, SMTP content filter, CLI).
type EmailTransport interface {
	// ProcessEmail analyzes one decoded email and returns the result
	ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.AnalysisResult, error)

	// Start starts the transport
	Start() error

	// Stop stops the transport
	Stop() error
}
