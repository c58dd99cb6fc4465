package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/adapters/model"
	"github.com/mikey/phishing-filter/internal/config"
	"github.com/mikey/phishing-filter/internal/core"
)

// ClassifierFactory creates classifiers from configuration
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier loads the configured model artifact. A missing artifact is
// not fatal: the classifier degrades to deterministic fallback results.
func (f *ClassifierFactory) CreateClassifier() core.Classifier {
	modelCfg := f.cfg.GetModel()
	return model.NewLogisticClassifier(modelCfg.Path, f.logger)
}
