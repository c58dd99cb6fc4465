package core

import (
	"fmt"
	"strings"
)

// BlendWeights control how the classifier confidence and the heuristic score
// are mixed into the final risk score.
type BlendWeights struct {
	Classifier float64
	Heuristic  float64
}

// DefaultBlendWeights returns the stock blend weights.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{Classifier: 0.7, Heuristic: 0.3}
}

// Combine blends the classifier result and heuristic score into the final
// verdict with explanation and recommendations. It is total: every well-formed
// input produces a result.
func Combine(
	features FeatureSet,
	classifier ClassifierResult,
	heuristicScore float64,
	blend BlendWeights,
	riskThreshold float64,
) *AnalysisResult {
	riskScore := blend.Classifier*classifier.Confidence + blend.Heuristic*heuristicScore
	isPhishing := riskScore > riskThreshold

	return &AnalysisResult{
		IsPhishing:      isPhishing,
		Confidence:      classifier.Confidence,
		RiskScore:       riskScore,
		Features:        features,
		Explanation:     buildExplanation(features, isPhishing, riskScore),
		Recommendations: buildRecommendations(features, isPhishing),
	}
}

// buildExplanation names the triggering factors in fixed priority order:
// suspicious links, urgent language, spoofed sender.
func buildExplanation(features FeatureSet, isPhishing bool, riskScore float64) string {
	if !isPhishing {
		return fmt.Sprintf("This email appears legitimate (confidence: %.2f%%)", (1-riskScore)*100)
	}

	var reasons []string
	if n := features.Int(FeatSuspiciousLinks); n > 0 {
		reasons = append(reasons, fmt.Sprintf("Contains %d suspicious links", n))
	}
	if features.Bool(FeatUrgentLanguage) {
		reasons = append(reasons, "Uses urgent/threatening language")
	}
	if features.Bool(FeatSpoofedSender) {
		reasons = append(reasons, "Sender appears to be spoofed")
	}

	return fmt.Sprintf("This email is likely phishing (confidence: %.2f%%). %s",
		riskScore*100, strings.Join(reasons, "; "))
}

func buildRecommendations(features FeatureSet, isPhishing bool) []string {
	if isPhishing {
		return []string{
			"Do not click any links in this email",
			"Do not download any attachments",
			"Report this email to your IT security team",
			"Delete the email immediately",
		}
	}

	var recommendations []string
	if features.Int(FeatSuspiciousLinks) > 0 {
		recommendations = append(recommendations, "Verify links before clicking")
	}
	if features.Bool(FeatExternalSender) {
		recommendations = append(recommendations, "Exercise caution with external sender")
	}
	return recommendations
}
