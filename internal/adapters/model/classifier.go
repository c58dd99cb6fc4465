package model

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
)

// LogisticClassifier is an implementation of the Classifier interface backed
// by a persisted logistic-regression artifact. The artifact is loaded once and
// immutable thereafter; concurrent Classify calls share it read-only.
type LogisticClassifier struct {
	artifact *Artifact
	logger   *zap.Logger
}

// NewLogisticClassifier loads the artifact at path. A missing or corrupt
// artifact is not an error: the classifier degrades to the deterministic
// fallback result so inference never blocks on missing state.
func NewLogisticClassifier(path string, logger *zap.Logger) *LogisticClassifier {
	artifact, err := LoadArtifact(path)
	if err != nil {
		logger.Warn("Model artifact unavailable, classifier will use fallback results",
			zap.String("path", path),
			zap.Error(err))
		return &LogisticClassifier{logger: logger}
	}

	logger.Info("Model artifact loaded",
		zap.String("path", path),
		zap.Int("features", len(artifact.FeatureNames)),
		zap.Float64("test_accuracy", artifact.Metadata.TestAccuracy))

	return &LogisticClassifier{
		artifact: artifact,
		logger:   logger,
	}
}

// NewFromArtifact wraps an already-loaded artifact. A nil artifact yields a
// classifier that always returns the fallback result.
func NewFromArtifact(artifact *Artifact, logger *zap.Logger) *LogisticClassifier {
	return &LogisticClassifier{
		artifact: artifact,
		logger:   logger,
	}
}

// Ready reports whether a trained artifact is loaded.
func (c *LogisticClassifier) Ready() bool {
	return c.artifact != nil
}

// Classify predicts the phishing probability for a FeatureSet and reports the
// winning class with its probability mass as confidence. It never fails.
func (c *LogisticClassifier) Classify(ctx context.Context, features core.FeatureSet) core.ClassifierResult {
	if c.artifact == nil {
		return FallbackResult()
	}

	vector := Vectorize(features, c.artifact.FeatureNames)

	z := c.artifact.Bias
	for i, x := range vector {
		scaled := (x - c.artifact.Means[i]) / c.artifact.Scales[i]
		z += c.artifact.Weights[i] * scaled
	}

	p := sigmoid(z)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		c.logger.Warn("Model produced non-finite probability, using fallback result")
		return FallbackResult()
	}

	if p >= 0.5 {
		return core.ClassifierResult{Label: 1, Confidence: p}
	}
	return core.ClassifierResult{Label: 0, Confidence: 1 - p}
}

// FallbackResult is the deterministic substitute used when no model is
// available: not phishing, confidence 0.5.
func FallbackResult() core.ClassifierResult {
	return core.ClassifierResult{Label: 0, Confidence: 0.5}
}

// Vectorize projects a FeatureSet onto the given feature order. Booleans map
// to 0/1, numbers pass through, strings map to their length and absent values
// to 0.
func Vectorize(features core.FeatureSet, names []string) []float64 {
	vector := make([]float64, len(names))
	for i, name := range names {
		switch v := features[name].(type) {
		case bool:
			if v {
				vector[i] = 1
			}
		case int:
			vector[i] = float64(v)
		case int64:
			vector[i] = float64(v)
		case float64:
			vector[i] = v
		case string:
			vector[i] = float64(len(v))
		default:
			vector[i] = 0
		}
	}
	return vector
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
