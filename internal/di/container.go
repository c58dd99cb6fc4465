package di

import (
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

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
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

	// Register result cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultCache, error) {
		return f.CreateResultCache()
	}); err != nil {
		return nil, err
	}

	// Register analyzer service
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		extractor core.FeatureExtractor,
		classifier core.Classifier,
		cache core.ResultCache,
		cacheFactory *factory.CacheFactory,
	) (*core.AnalyzerService, error) {
		detector := cfg.GetDetector()
		cacheTTL, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return core.NewAnalyzerService(
			extractor,
			classifier,
			cache,
			logger,
			cacheFactory.IsCacheEnabled(),
			cacheTTL,
			detector.RiskThreshold,
			detector.RuleWeights,
			detector.Blend,
		), nil
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
