package di

import (
	"flag"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/config"
	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/domains"
	"github.com/mikey/phishing-filter/internal/emailparse"
	"github.com/mikey/phishing-filter/internal/factory"
	"github.com/mikey/phishing-filter/internal/features"
	"github.com/mikey/phishing-filter/internal/logging"
	"github.com/mikey/phishing-filter/internal/ports"
	"github.com/mikey/phishing-filter/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Model flags
	ModelPath string

	// Detection flags
	RiskThreshold   float64
	InternalDomains string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.ModelPath, "model", "models/phishing_model.json", "Path to the trained model artifact")
	flag.Float64Var(&flags.RiskThreshold, "threshold", 0.5, "Risk score threshold for the phishing verdict")
	flag.StringVar(&flags.InternalDomains, "internal-domains", "", "Comma-separated list of internal domains")
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTransportFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor and email parser
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(emailparse.NewParser); err != nil {
		return nil, err
	}

	// Register internal-domain allow-list
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *domains.Allowlist {
		return domains.NewAllowlist(cfg.GetDetector().InternalDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register feature extractor
	if err := container.Provide(func(allowlist *domains.Allowlist, logger *zap.Logger) core.FeatureExtractor {
		return features.NewExtractor(allowlist, logger)
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) core.Classifier {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register analyzer service with no cache
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		extractor core.FeatureExtractor,
		classifier core.Classifier,
	) *core.AnalyzerService {
		detector := cfg.GetDetector()
		return core.NewAnalyzerService(
			extractor,
			classifier,
			nil,   // No cache for CLI
			logger,
			false, // Cache disabled
			time.Duration(0),
			detector.RiskThreshold,
			detector.RuleWeights,
			detector.Blend,
		)
	}); err != nil {
		return nil, err
	}

	// Register email transport
	if err := container.Provide(func(f *factory.TransportFactory) (ports.EmailTransport, error) {
		return f.CreateTransport()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// CLI specific settings
	v.Set("server.transport", "cli")
	v.Set("cli.verbose", flags.Verbose)

	v.Set("model.path", flags.ModelPath)
	v.Set("detector.risk_threshold", flags.RiskThreshold)

	if flags.InternalDomains != "" {
		domainList := strings.Split(flags.InternalDomains, ",")
		for i, domain := range domainList {
			domainList[i] = strings.TrimSpace(domain)
		}
		v.Set("detector.internal_domains", domainList)
	}

	// CLI runs are one-shot, never cached
	v.Set("cache.enabled", false)

	return config.NewFromViper(v)
}
