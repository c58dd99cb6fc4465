package config

import "github.com/mikey/phishing-filter/internal/core"

// DetectorConfig represents the configuration for the analysis pipeline
type DetectorConfig struct {
	RiskThreshold   float64
	Blend           core.BlendWeights
	RuleWeights     core.RuleWeights
	InternalDomains []string
}

// ModelConfig represents the configuration for the trained model artifact
type ModelConfig struct {
	Path string
}

// SMTPConfig represents the configuration for the SMTP content filter
type SMTPConfig struct {
	ListenAddress string
	BlockPhishing bool
	RelayAddress  string
	RelayPort     int
	RelayEnabled  bool
	StatusHeader  string
	ScoreHeader   string
	ReasonHeader  string
	MaxBodySize   int
}

// GetDetector returns the detector configuration
func (c *Config) GetDetector() DetectorConfig {
	return DetectorConfig{
		RiskThreshold: c.GetFloat64("detector.risk_threshold"),
		Blend: core.BlendWeights{
			Classifier: c.GetFloat64("detector.classifier_weight"),
			Heuristic:  c.GetFloat64("detector.heuristic_weight"),
		},
		RuleWeights: core.RuleWeights{
			UrgentLanguage:         c.GetFloat64("detector.rules.urgent_language"),
			SuspiciousLinks:        c.GetFloat64("detector.rules.suspicious_links"),
			SpoofedSender:          c.GetFloat64("detector.rules.spoofed_sender"),
			MissingSecurityHeaders: c.GetFloat64("detector.rules.missing_security_headers"),
			Typos:                  c.GetFloat64("detector.rules.typos"),
		},
		InternalDomains: c.GetStringSlice("detector.internal_domains"),
	}
}

// GetModel returns the model configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Path: c.GetString("model.path"),
	}
}

// GetSMTP returns the SMTP content filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress: c.GetString("server.smtp.listen_address"),
		BlockPhishing: c.GetBool("server.smtp.block_phishing"),
		RelayAddress:  c.GetString("server.smtp.relay_address"),
		RelayPort:     c.GetInt("server.smtp.relay_port"),
		RelayEnabled:  c.GetBool("server.smtp.relay_enabled"),
		StatusHeader:  c.GetString("server.headers.status"),
		ScoreHeader:   c.GetString("server.headers.score"),
		ReasonHeader:  c.GetString("server.headers.reason"),
		MaxBodySize:   c.GetInt("server.max_body_size"),
	}
}
