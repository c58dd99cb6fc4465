package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalyzerService is the core phishing analysis pipeline: feature extraction,
// classifier and heuristic evaluation, verdict combination.
type AnalyzerService struct {
	extractor     FeatureExtractor
	classifier    Classifier
	cache         ResultCache
	logger        *zap.Logger
	cacheEnabled  bool
	cacheTTL      time.Duration
	riskThreshold float64
	ruleWeights   RuleWeights
	blend         BlendWeights
}

// NewAnalyzerService creates a new analyzer service.
func NewAnalyzerService(
	extractor FeatureExtractor,
	classifier Classifier,
	cache ResultCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	riskThreshold float64,
	ruleWeights RuleWeights,
	blend BlendWeights,
) *AnalyzerService {
	return &AnalyzerService{
		extractor:     extractor,
		classifier:    classifier,
		cache:         cache,
		logger:        logger,
		cacheEnabled:  cacheEnabled && cache != nil,
		cacheTTL:      cacheTTL,
		riskThreshold: riskThreshold,
		ruleWeights:   ruleWeights,
		blend:         blend,
	}
}

// Analyze runs the full pipeline for one email. It is total: internal faults
// degrade to fallback values rather than surfacing as errors.
func (s *AnalyzerService) Analyze(ctx context.Context, email *EmailInput) *AnalysisResult {
	key := contentDigest(email)

	if s.cacheEnabled {
		if cached, ok := s.cache.Get(ctx, key); ok {
			s.logger.Debug("Cache hit for email",
				zap.String("sender", email.Sender),
				zap.String("key", key))
			return cached
		}
	}

	features := s.extractor.Extract(ctx, email)

	// The classifier and the heuristic scorer are independent given the same
	// FeatureSet, so evaluate them in parallel.
	var (
		wg             sync.WaitGroup
		classification ClassifierResult
		heuristicScore float64
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		classification = s.classifier.Classify(ctx, features)
	}()
	go func() {
		defer wg.Done()
		heuristicScore = HeuristicScore(features, s.ruleWeights)
	}()
	wg.Wait()

	result := Combine(features, classification, heuristicScore, s.blend, s.riskThreshold)
	result.AnalysisID = uuid.NewString()
	result.AnalyzedAt = time.Now().UTC()

	s.logger.Info("Email analyzed",
		zap.String("analysis_id", result.AnalysisID),
		zap.String("sender", email.Sender),
		zap.Bool("is_phishing", result.IsPhishing),
		zap.Float64("risk_score", result.RiskScore),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("heuristic_score", heuristicScore))

	if s.cacheEnabled {
		s.cache.Set(ctx, key, result, s.cacheTTL)
	}

	return result
}

// RiskThreshold returns the configured phishing verdict threshold.
func (s *AnalyzerService) RiskThreshold() float64 {
	return s.riskThreshold
}

// contentDigest derives a stable cache key from the analyzed email fields.
func contentDigest(email *EmailInput) string {
	h := sha256.New()
	h.Write([]byte(email.Sender))
	h.Write([]byte{0})
	h.Write([]byte(email.Subject))
	h.Write([]byte{0})
	h.Write([]byte(email.Body))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(email.Links, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
