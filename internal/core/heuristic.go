package core

// RuleWeights holds the contribution of each heuristic rule. The values are
// configuration, not calibrated thresholds.
type RuleWeights struct {
	UrgentLanguage         float64
	SuspiciousLinks        float64
	SpoofedSender          float64
	MissingSecurityHeaders float64
	Typos                  float64
}

// DefaultRuleWeights returns the stock rule weights.
func DefaultRuleWeights() RuleWeights {
	return RuleWeights{
		UrgentLanguage:         0.2,
		SuspiciousLinks:        0.3,
		SpoofedSender:          0.4,
		MissingSecurityHeaders: 0.2,
		Typos:                  0.1,
	}
}

// HeuristicScore computes the rule-based severity score for a FeatureSet.
// The result is the sum of triggered rule weights, clamped to 1.0.
func HeuristicScore(features FeatureSet, weights RuleWeights) float64 {
	score := 0.0

	if features.Bool(FeatUrgentLanguage) {
		score += weights.UrgentLanguage
	}
	if features.Int(FeatSuspiciousLinks) > 0 {
		score += weights.SuspiciousLinks
	}
	if features.Bool(FeatSpoofedSender) {
		score += weights.SpoofedSender
	}
	if features.Int(FeatMissingSecurityHeaders) > 2 {
		score += weights.MissingSecurityHeaders
	}
	if features.Int(FeatTyposCount) > 5 {
		score += weights.Typos
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
