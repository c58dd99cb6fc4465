package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExtractor struct {
	features FeatureSet
	calls    int
}

func (s *stubExtractor) Extract(ctx context.Context, email *EmailInput) FeatureSet {
	s.calls++
	return s.features
}

type stubClassifier struct {
	result ClassifierResult
	ready  bool
}

func (s *stubClassifier) Classify(ctx context.Context, features FeatureSet) ClassifierResult {
	return s.result
}

func (s *stubClassifier) Ready() bool { return s.ready }

type stubCache struct {
	mu      sync.Mutex
	entries map[string]*AnalysisResult
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*AnalysisResult)}
}

func (c *stubCache) Get(ctx context.Context, key string) (*AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[key]
	return result, ok
}

func (c *stubCache) Set(ctx context.Context, key string, result *AnalysisResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *stubCache) Cleanup(ctx context.Context) error { return nil }

func testEmail() *EmailInput {
	return &EmailInput{
		Sender:  "someone@example.com",
		Subject: "Hello",
		Body:    "A perfectly ordinary message.",
		Headers: map[string][]string{"From": {"someone@example.com"}},
	}
}

func TestAnalyzePipeline(t *testing.T) {
	extractor := &stubExtractor{features: FeatureSet{
		FeatUrgentLanguage:  true,
		FeatSuspiciousLinks: 1,
	}}
	classifier := &stubClassifier{result: ClassifierResult{Label: 1, Confidence: 0.9}, ready: true}

	service := NewAnalyzerService(extractor, classifier, nil, zap.NewNop(),
		false, 0, 0.5, DefaultRuleWeights(), DefaultBlendWeights())

	result := service.Analyze(context.Background(), testEmail())
	require.NotNil(t, result)

	// risk = 0.7*0.9 + 0.3*(0.2+0.3)
	assert.InDelta(t, 0.78, result.RiskScore, 1e-9)
	assert.True(t, result.IsPhishing)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, extractor.features, result.Features)
	assert.NotEmpty(t, result.AnalysisID)
	assert.False(t, result.AnalyzedAt.IsZero())
	assert.NotEmpty(t, result.Explanation)
	assert.NotEmpty(t, result.Recommendations)
}

func TestAnalyzeDeterministicScores(t *testing.T) {
	extractor := &stubExtractor{features: FeatureSet{FeatSpoofedSender: true}}
	classifier := &stubClassifier{result: ClassifierResult{Label: 0, Confidence: 0.6}}

	service := NewAnalyzerService(extractor, classifier, nil, zap.NewNop(),
		false, 0, 0.5, DefaultRuleWeights(), DefaultBlendWeights())

	first := service.Analyze(context.Background(), testEmail())
	second := service.Analyze(context.Background(), testEmail())

	assert.Equal(t, first.IsPhishing, second.IsPhishing)
	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Explanation, second.Explanation)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)
}

func TestAnalyzeCachesByContentDigest(t *testing.T) {
	extractor := &stubExtractor{features: FeatureSet{}}
	classifier := &stubClassifier{result: ClassifierResult{Label: 0, Confidence: 0.5}}
	cache := newStubCache()

	service := NewAnalyzerService(extractor, classifier, cache, zap.NewNop(),
		true, time.Hour, 0.5, DefaultRuleWeights(), DefaultBlendWeights())

	first := service.Analyze(context.Background(), testEmail())
	second := service.Analyze(context.Background(), testEmail())

	assert.Equal(t, 1, extractor.calls)
	assert.Same(t, first, second)

	// A different body misses the cache.
	other := testEmail()
	other.Body = "Different content entirely."
	service.Analyze(context.Background(), other)
	assert.Equal(t, 2, extractor.calls)
}

func TestAnalyzeWithFallbackClassifier(t *testing.T) {
	extractor := &stubExtractor{features: FeatureSet{}}
	classifier := &stubClassifier{result: ClassifierResult{Label: 0, Confidence: 0.5}, ready: false}

	service := NewAnalyzerService(extractor, classifier, nil, zap.NewNop(),
		false, 0, 0.5, DefaultRuleWeights(), DefaultBlendWeights())

	result := service.Analyze(context.Background(), testEmail())

	assert.False(t, result.IsPhishing)
	assert.InDelta(t, 0.35, result.RiskScore, 1e-9)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
}

func TestContentDigestStability(t *testing.T) {
	a := testEmail()
	b := testEmail()
	assert.Equal(t, contentDigest(a), contentDigest(b))

	b.Links = []string{"https://example.com"}
	assert.NotEqual(t, contentDigest(a), contentDigest(b))
}
