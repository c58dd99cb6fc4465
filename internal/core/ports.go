package core

import (
	"context"
	"time"
)

// FeatureExtractor derives a FeatureSet from a decoded email.
type FeatureExtractor interface {
	// Extract computes all features. It never fails: groups that cannot be
	// computed are filled with safe defaults.
	Extract(ctx context.Context, email *EmailInput) FeatureSet
}

// Classifier produces a statistical phishing prediction from a FeatureSet.
type Classifier interface {
	// Classify never fails: if the underlying model is unavailable or
	// inference faults, a deterministic fallback result is returned.
	Classify(ctx context.Context, features FeatureSet) ClassifierResult

	// Ready reports whether a trained model artifact is loaded.
	Ready() bool
}

// ResultCache caches analysis results keyed by email content digest.
type ResultCache interface {
	// Get retrieves a cached result, reporting whether a live entry was found.
	Get(ctx context.Context, key string) (*AnalysisResult, bool)

	// Set stores a result with the given time to live.
	Set(ctx context.Context, key string, result *AnalysisResult, ttl time.Duration)

	// Delete removes a cache entry.
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}
