package domains

import (
	"strings"

	"go.uber.org/zap"
)

// Allowlist holds the configured internal (organizational) domains. Hosts
// matching an allow-listed domain are treated as trusted rather than external.
type Allowlist struct {
	domains []string
	logger  *zap.Logger
}

// NewAllowlist creates a new internal-domain allow-list.
func NewAllowlist(domains []string, logger *zap.Logger) *Allowlist {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized internal-domain allow-list", zap.Strings("domains", normalized))
	}

	return &Allowlist{
		domains: normalized,
		logger:  logger,
	}
}

// Contains reports whether the host matches any allow-listed domain. Matching
// is by substring so that subdomains and host:port forms are covered.
func (a *Allowlist) Contains(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range a.domains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}

// Domains returns the normalized allow-listed domains.
func (a *Allowlist) Domains() []string {
	out := make([]string, len(a.domains))
	copy(out, a.domains)
	return out
}
