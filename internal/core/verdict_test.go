package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinePhishingVerdict(t *testing.T) {
	features := FeatureSet{
		FeatSuspiciousLinks: 2,
		FeatUrgentLanguage:  true,
		FeatSpoofedSender:   true,
	}
	classification := ClassifierResult{Label: 1, Confidence: 0.9}

	result := Combine(features, classification, 0.8, DefaultBlendWeights(), 0.5)

	assert.True(t, result.IsPhishing)
	assert.InDelta(t, 0.87, result.RiskScore, 1e-9)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t,
		"This email is likely phishing (confidence: 87.00%). "+
			"Contains 2 suspicious links; Uses urgent/threatening language; Sender appears to be spoofed",
		result.Explanation)
	assert.Equal(t, []string{
		"Do not click any links in this email",
		"Do not download any attachments",
		"Report this email to your IT security team",
		"Delete the email immediately",
	}, result.Recommendations)
}

func TestCombineLegitimateVerdict(t *testing.T) {
	features := FeatureSet{FeatExternalSender: false}
	classification := ClassifierResult{Label: 0, Confidence: 0.5}

	result := Combine(features, classification, 0.0, DefaultBlendWeights(), 0.5)

	assert.False(t, result.IsPhishing)
	assert.InDelta(t, 0.35, result.RiskScore, 1e-9)
	assert.Equal(t, "This email appears legitimate (confidence: 65.00%)", result.Explanation)
	assert.Empty(t, result.Recommendations)
}

func TestCombineLegitimateCautionRecommendations(t *testing.T) {
	features := FeatureSet{
		FeatSuspiciousLinks: 1,
		FeatExternalSender:  true,
	}
	classification := ClassifierResult{Label: 0, Confidence: 0.1}

	result := Combine(features, classification, 0.0, DefaultBlendWeights(), 0.5)

	assert.False(t, result.IsPhishing)
	assert.Equal(t, []string{
		"Verify links before clicking",
		"Exercise caution with external sender",
	}, result.Recommendations)
}

func TestCombineRiskBounds(t *testing.T) {
	blend := DefaultBlendWeights()

	low := Combine(FeatureSet{}, ClassifierResult{Label: 0, Confidence: 0}, 0, blend, 0.5)
	assert.Equal(t, 0.0, low.RiskScore)
	assert.False(t, low.IsPhishing)

	high := Combine(FeatureSet{}, ClassifierResult{Label: 1, Confidence: 1}, 1, blend, 0.5)
	assert.InDelta(t, 1.0, high.RiskScore, 1e-9)
	assert.True(t, high.IsPhishing)
}

func TestCombineThresholdIsStrict(t *testing.T) {
	// A risk score exactly at the threshold is not phishing.
	result := Combine(FeatureSet{}, ClassifierResult{Label: 1, Confidence: 1}, 1, DefaultBlendWeights(), 1.0)
	assert.InDelta(t, 1.0, result.RiskScore, 1e-9)
	assert.False(t, result.IsPhishing)
}

func TestExplanationOmitsUntriggeredReasons(t *testing.T) {
	features := FeatureSet{FeatUrgentLanguage: true}
	result := Combine(features, ClassifierResult{Label: 1, Confidence: 1}, 1, DefaultBlendWeights(), 0.5)

	assert.Equal(t,
		"This email is likely phishing (confidence: 100.00%). Uses urgent/threatening language",
		result.Explanation)
}
