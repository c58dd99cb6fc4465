package features

import (
	"context"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/domains"
)

// Keyword lists are fixed; the internal-domain allow-list is injected.
var (
	urgencyKeywords = []string{
		"urgent", "immediate", "expires", "suspended", "verify",
		"click here", "act now", "limited time", "confirm", "update",
	}

	suspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".bit", ".onion"}

	urlShorteners = []string{
		"bit.ly", "tinyurl.com", "short.link", "t.co", "goo.gl",
		"ow.ly", "is.gd", "buff.ly", "adf.ly",
	}

	sensitiveTerms = []string{
		"social security", "ssn", "credit card", "password",
		"bank account", "pin", "verification code", "login",
	}

	securityHeaders = []string{"DKIM-Signature", "SPF", "DMARC", "ARC-Authentication-Results"}

	routingKeywords = []string{"temp", "fake", "test", "spam"}
)

var (
	punctuationRe = regexp.MustCompile(`[!?]{2,}`)
	digitWordRe   = regexp.MustCompile(`\b\w*[0-9]+\w*\b`)
	mixedCaseRe   = regexp.MustCompile(`\b[a-z]*[A-Z]+[a-z]*\b`)
	formRe        = regexp.MustCompile(`(?i)<form|<input`)
	scriptRe      = regexp.MustCompile(`(?i)<script`)
)

var fold = cases.Fold()

// Extractor builds a FeatureSet from a decoded email. It is read-only over
// its input; a fault in one feature group substitutes that group's safe
// defaults instead of aborting the whole extraction.
type Extractor struct {
	allowlist *domains.Allowlist
	logger    *zap.Logger
}

// NewExtractor creates a new feature extractor.
func NewExtractor(allowlist *domains.Allowlist, logger *zap.Logger) *Extractor {
	return &Extractor{
		allowlist: allowlist,
		logger:    logger,
	}
}

// featureGroup is one independently computable slice of the FeatureSet.
type featureGroup struct {
	name     string
	run      func() map[string]any
	defaults func() map[string]any
}

// Extract computes all feature groups. The groups have no data dependencies
// on each other, so they fan out concurrently and join before merging.
func (e *Extractor) Extract(ctx context.Context, email *core.EmailInput) core.FeatureSet {
	groups := []featureGroup{
		{
			name:     "sender",
			run:      func() map[string]any { return e.senderFeatures(email) },
			defaults: senderDefaults,
		},
		{
			name:     "subject",
			run:      func() map[string]any { return e.subjectFeatures(email.Subject) },
			defaults: subjectDefaults,
		},
		{
			name:     "body",
			run:      func() map[string]any { return e.bodyFeatures(email.Body) },
			defaults: bodyDefaults,
		},
		{
			name:     "link",
			run:      func() map[string]any { return e.linkFeatures(email.Links) },
			defaults: linkDefaults,
		},
		{
			name:     "header",
			run:      func() map[string]any { return e.headerFeatures(email) },
			defaults: headerDefaults,
		},
	}

	results := make([]map[string]any, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g featureGroup) {
			defer wg.Done()
			results[i] = e.runGroup(g)
		}(i, g)
	}
	wg.Wait()

	features := make(core.FeatureSet, len(core.FeatureNames()))
	for _, r := range results {
		for k, v := range r {
			features[k] = v
		}
	}
	return features
}

// runGroup executes one group, substituting its defaults on panic.
func (e *Extractor) runGroup(g featureGroup) (out map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Feature group extraction failed, using defaults",
				zap.String("group", g.name),
				zap.Any("fault", r))
			out = g.defaults()
		}
	}()
	return g.run()
}

func (e *Extractor) senderFeatures(email *core.EmailInput) map[string]any {
	senderDomain, senderName, err := parseSender(email.Sender)
	if err != nil {
		e.logger.Warn("Sender parse failed, using sender defaults",
			zap.String("sender", email.Sender),
			zap.Error(err))
		return senderDefaults()
	}

	return map[string]any{
		core.FeatSenderDomain:     senderDomain,
		core.FeatSenderName:       senderName,
		core.FeatSpoofedSender:    spoofedSender(email),
		core.FeatSuspiciousDomain: containsSuspiciousTLD(senderDomain),
		core.FeatExternalSender:   !e.allowlist.Contains(senderDomain),
	}
}

func senderDefaults() map[string]any {
	return map[string]any{
		core.FeatSenderDomain:     "",
		core.FeatSenderName:       "",
		core.FeatSpoofedSender:    false,
		core.FeatSuspiciousDomain: false,
		core.FeatExternalSender:   true,
	}
}

func (e *Extractor) subjectFeatures(subject string) map[string]any {
	return map[string]any{
		core.FeatUrgentLanguage:       containsUrgency(subject),
		core.FeatExcessivePunctuation: punctuationRe.MatchString(subject),
		core.FeatAllCapsSubject:       isAllCaps(subject) && utf8.RuneCountInString(subject) > 10,
		core.FeatSubjectLength:        utf8.RuneCountInString(subject),
	}
}

func subjectDefaults() map[string]any {
	return map[string]any{
		core.FeatUrgentLanguage:       false,
		core.FeatExcessivePunctuation: false,
		core.FeatAllCapsSubject:       false,
		core.FeatSubjectLength:        0,
	}
}

func (e *Extractor) bodyFeatures(body string) map[string]any {
	folded := fold.String(body)

	requestsPersonalInfo := false
	for _, term := range sensitiveTerms {
		if strings.Contains(folded, term) {
			requestsPersonalInfo = true
			break
		}
	}

	return map[string]any{
		core.FeatBodyLength:           utf8.RuneCountInString(body),
		core.FeatWordCount:            len(strings.Fields(body)),
		core.FeatUrgentBodyLanguage:   containsUrgency(body),
		core.FeatTyposCount:           countPotentialTypos(body),
		core.FeatHasForms:             formRe.MatchString(body),
		core.FeatHasScripts:           scriptRe.MatchString(body),
		core.FeatRequestsPersonalInfo: requestsPersonalInfo,
	}
}

func bodyDefaults() map[string]any {
	return map[string]any{
		core.FeatBodyLength:           0,
		core.FeatWordCount:            0,
		core.FeatUrgentBodyLanguage:   false,
		core.FeatTyposCount:           0,
		core.FeatHasForms:             false,
		core.FeatHasScripts:           false,
		core.FeatRequestsPersonalInfo: false,
	}
}

func (e *Extractor) linkFeatures(links []string) map[string]any {
	suspicious, shortened, external := 0, 0, 0

	for _, link := range links {
		host := linkHost(link)
		if host == "" {
			// Fail safe: an unparsable link is treated as suspicious.
			e.logger.Warn("Unparsable link treated as suspicious", zap.String("link", link))
			suspicious++
			continue
		}

		if containsSuspiciousTLD(host) {
			suspicious++
		}
		if isShortener(host) {
			shortened++
		}
		if !e.allowlist.Contains(host) {
			external++
		}
	}

	return map[string]any{
		core.FeatLinkCount:       len(links),
		core.FeatSuspiciousLinks: suspicious,
		core.FeatShortenedLinks:  shortened,
		core.FeatExternalLinks:   external,
	}
}

func linkDefaults() map[string]any {
	return map[string]any{
		core.FeatLinkCount:       0,
		core.FeatSuspiciousLinks: 0,
		core.FeatShortenedLinks:  0,
		core.FeatExternalLinks:   0,
	}
}

func (e *Extractor) headerFeatures(email *core.EmailInput) map[string]any {
	missing := 0
	for _, h := range securityHeaders {
		if !email.HasHeader(h) {
			missing++
		}
	}

	received := email.HeaderValues("Received")

	return map[string]any{
		core.FeatMissingSecurityHeaders: missing,
		core.FeatHopCount:               len(received),
		core.FeatSuspiciousRouting:      suspiciousRouting(received),
	}
}

func headerDefaults() map[string]any {
	return map[string]any{
		core.FeatMissingSecurityHeaders: 0,
		core.FeatHopCount:               0,
		core.FeatSuspiciousRouting:      false,
	}
}

// parseSender extracts the sender domain and display name.
func parseSender(sender string) (domain, name string, err error) {
	addr, err := mail.ParseAddress(sender)
	if err != nil {
		// Fall back to a bare address split for senders without RFC 5322
		// framing; only give up when no address part is recognizable.
		if at := strings.LastIndex(sender, "@"); at >= 0 && at < len(sender)-1 {
			return strings.ToLower(strings.TrimSpace(sender[at+1:])), "", nil
		}
		return "", "", err
	}

	domain = ""
	if at := strings.LastIndex(addr.Address, "@"); at >= 0 {
		domain = strings.ToLower(addr.Address[at+1:])
	}
	return domain, addr.Name, nil
}

// spoofedSender reports whether the Return-Path disagrees with the declared
// sender while both Return-Path and From headers are present.
func spoofedSender(email *core.EmailInput) bool {
	returnPath := strings.Trim(strings.TrimSpace(email.Header("Return-Path")), "<>")
	from := email.Header("From")

	if returnPath == "" || from == "" {
		return false
	}
	return !strings.EqualFold(returnPath, email.Sender)
}

func containsUrgency(text string) bool {
	folded := fold.String(text)
	for _, kw := range urgencyKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func containsSuspiciousTLD(host string) bool {
	host = strings.ToLower(host)
	for _, tld := range suspiciousTLDs {
		if strings.Contains(host, tld) {
			return true
		}
	}
	return false
}

func isShortener(host string) bool {
	for _, s := range urlShorteners {
		if host == s {
			return true
		}
	}
	return false
}

func linkHost(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// isAllCaps reports whether the text has at least one cased letter and no
// lower-case letters.
func isAllCaps(text string) bool {
	hasUpper := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// countPotentialTypos sums three noisy proxies for sloppy text: runs of three
// or more identical characters, digits inside word tokens, and upper-case
// letters inside otherwise lower-case tokens. Not a spell-checker.
func countPotentialTypos(text string) int {
	count := countRepeatedRuns(text)
	count += len(digitWordRe.FindAllString(text, -1))
	count += len(mixedCaseRe.FindAllString(text, -1))
	return count
}

// countRepeatedRuns counts maximal runs of the same character with length
// three or more. Done by hand: RE2 has no backreferences.
func countRepeatedRuns(text string) int {
	count := 0
	runLen := 0
	var prev rune
	for i, r := range text {
		if i > 0 && r == prev {
			runLen++
		} else {
			if runLen >= 3 {
				count++
			}
			runLen = 1
		}
		prev = r
	}
	if runLen >= 3 {
		count++
	}
	return count
}

func suspiciousRouting(received []string) bool {
	if len(received) > 10 {
		return true
	}
	for _, value := range received {
		folded := fold.String(value)
		for _, kw := range routingKeywords {
			if strings.Contains(folded, kw) {
				return true
			}
		}
	}
	return false
}
