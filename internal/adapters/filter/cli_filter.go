package filter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
)

// CliFilter implements a command-line interface for phishing analysis
type CliFilter struct {
	analyzer *core.AnalyzerService
	logger   *zap.Logger
	verbose  bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(analyzer *core.AnalyzerService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		analyzer: analyzer,
		logger:   logger,
		verbose:  verbose,
	}, nil
}

// ProcessEmail analyzes an email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.Sender))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.Sender)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("Links: %d\n", len(email.Links))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()
	result := f.analyzer.Analyze(ctx, email)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is phishing: %t\n", result.IsPhishing)
	fmt.Printf("Risk score: %.4f\n", result.RiskScore)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Explanation: %s\n", result.Explanation)
	if len(result.Recommendations) > 0 {
		fmt.Printf("Recommendations:\n")
		for _, rec := range result.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
	if f.verbose {
		fmt.Printf("\nTriggered features:\n")
		for _, name := range core.FeatureNames() {
			fmt.Printf("  %s: %v\n", name, result.Features[name])
		}
	}
	fmt.Printf("Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
