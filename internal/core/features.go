package core

// Feature names produced by the extractor. The classifier projects a
// FeatureSet onto FeatureNames() in this exact order, so the order here must
// match the order used when the model artifact was trained.
const (
	FeatSenderDomain           = "sender_domain"
	FeatSenderName             = "sender_name"
	FeatSpoofedSender          = "spoofed_sender"
	FeatSuspiciousDomain       = "suspicious_domain"
	FeatExternalSender         = "external_sender"
	FeatUrgentLanguage         = "urgent_language"
	FeatExcessivePunctuation   = "excessive_punctuation"
	FeatAllCapsSubject         = "all_caps_subject"
	FeatSubjectLength          = "subject_length"
	FeatBodyLength             = "body_length"
	FeatWordCount              = "word_count"
	FeatUrgentBodyLanguage     = "urgent_body_language"
	FeatTyposCount             = "typos_count"
	FeatHasForms               = "has_forms"
	FeatHasScripts             = "has_scripts"
	FeatRequestsPersonalInfo   = "requests_personal_info"
	FeatLinkCount              = "link_count"
	FeatSuspiciousLinks        = "suspicious_links"
	FeatShortenedLinks         = "shortened_links"
	FeatExternalLinks          = "external_links"
	FeatMissingSecurityHeaders = "missing_security_headers"
	FeatHopCount               = "hop_count"
	FeatSuspiciousRouting      = "suspicious_routing"
)

var featureNames = []string{
	FeatSenderDomain,
	FeatSenderName,
	FeatSpoofedSender,
	FeatSuspiciousDomain,
	FeatExternalSender,
	FeatUrgentLanguage,
	FeatExcessivePunctuation,
	FeatAllCapsSubject,
	FeatSubjectLength,
	FeatBodyLength,
	FeatWordCount,
	FeatUrgentBodyLanguage,
	FeatTyposCount,
	FeatHasForms,
	FeatHasScripts,
	FeatRequestsPersonalInfo,
	FeatLinkCount,
	FeatSuspiciousLinks,
	FeatShortenedLinks,
	FeatExternalLinks,
	FeatMissingSecurityHeaders,
	FeatHopCount,
	FeatSuspiciousRouting,
}

// FeatureNames returns the canonical ordered list of feature names.
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}
