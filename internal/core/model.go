package core

import (
	"strings"
	"time"
)

// EmailInput represents a decoded email ready for analysis. The transport
// layer is responsible for MIME/HTML decoding and link extraction; the
// analyzer never parses raw message bytes itself.
type EmailInput struct {
	Sender  string
	Subject string
	Body    string
	Headers map[string][]string
	Links   []string
}

// Header returns the first value of a header, matched case-insensitively.
func (e *EmailInput) Header(name string) string {
	values := e.HeaderValues(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// HeaderValues returns all values of a header, matched case-insensitively.
func (e *EmailInput) HeaderValues(name string) []string {
	var values []string
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			values = append(values, v...)
		}
	}
	return values
}

// HasHeader reports whether the header is present, matched case-insensitively.
func (e *EmailInput) HasHeader(name string) bool {
	for k := range e.Headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// FeatureSet maps feature names to extracted values. Values are booleans,
// integer counts or strings; every name in FeatureNames() is present after
// extraction, with safe defaults substituted for failed groups.
type FeatureSet map[string]any

// Bool returns the named feature as a boolean, false if absent or non-boolean.
func (f FeatureSet) Bool(name string) bool {
	v, ok := f[name].(bool)
	return ok && v
}

// Int returns the named feature as an integer, 0 if absent or non-numeric.
func (f FeatureSet) Int(name string) int {
	switch v := f[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Str returns the named feature as a string, "" if absent or non-string.
func (f FeatureSet) Str(name string) string {
	v, _ := f[name].(string)
	return v
}

// ClassifierResult is the output of the statistical classifier.
type ClassifierResult struct {
	// Label is the predicted class: 0 for legitimate, 1 for phishing.
	Label int
	// Confidence is the probability mass of the winning class, in [0,1].
	Confidence float64
}

// AnalysisResult is the terminal artifact of one analysis.
type AnalysisResult struct {
	AnalysisID      string     `json:"analysis_id"`
	IsPhishing      bool       `json:"is_phishing"`
	Confidence      float64    `json:"confidence"`
	RiskScore       float64    `json:"risk_score"`
	Features        FeatureSet `json:"features"`
	Explanation     string     `json:"explanation"`
	Recommendations []string   `json:"recommendations"`
	AnalyzedAt      time.Time  `json:"analyzed_at"`
}

// CacheEntry is a cached analysis result keyed by email content digest.
type CacheEntry struct {
	Key       string
	Result    *AnalysisResult
	LastSeen  time.Time
	ExpiresAt time.Time
}
