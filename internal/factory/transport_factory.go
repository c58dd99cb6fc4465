package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/adapters/filter"
	"github.com/mikey/phishing-filter/internal/adapters/httpapi"
	"github.com/mikey/phishing-filter/internal/config"
	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/emailparse"
	"github.com/mikey/phishing-filter/internal/ports"
	"github.com/mikey/phishing-filter/internal/utils"
)

// TransportFactory creates email transports based on configuration
type TransportFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	analyzer   *core.AnalyzerService
	classifier core.Classifier
	parser     *emailparse.Parser
	text       *utils.TextProcessor
}

// NewTransportFactory creates a new transport factory
func NewTransportFactory(
	cfg *config.Config,
	logger *zap.Logger,
	analyzer *core.AnalyzerService,
	classifier core.Classifier,
	parser *emailparse.Parser,
	text *utils.TextProcessor,
) *TransportFactory {
	return &TransportFactory{
		cfg:        cfg,
		logger:     logger,
		analyzer:   analyzer,
		classifier: classifier,
		parser:     parser,
		text:       text,
	}
}

// CreateTransport creates an email transport based on the configuration
func (f *TransportFactory) CreateTransport() (ports.EmailTransport, error) {
	transport := f.cfg.GetString("server.transport")

	switch transport {
	case "http":
		return httpapi.NewServer(
			f.analyzer,
			f.classifier,
			f.parser,
			f.logger,
			f.cfg.GetString("server.listen_address"),
		), nil
	case "smtp":
		return filter.NewSMTPFilter(
			f.analyzer,
			f.parser,
			f.text,
			f.logger,
			f.cfg.GetSMTP(),
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.analyzer,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transport)
	}
}
