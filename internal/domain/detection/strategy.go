package detection

import (
	"github.com/stoik/phishcatch/internal/domain"
)

// ClassificationStrategy defines the interface that all host classification rules must implement
//
// Each rule looks at a normalized host and either returns a Verdict or nil when it has no opinion.
// The ListClassifier combines verdicts, letting Dangerous win over Enterprise.
type ClassificationStrategy interface {
	// Classify returns a Verdict for the host, nil if the rule does not apply
	Classify(host string, context *ClassificationContext) *Verdict

	// Name returns the human-readable name of this rule
	Name() string
}

// Verdict is a single rule's opinion about a host
type Verdict struct {
	Type   domain.DomainType
	Reason string
}

// ClassificationContext provides the domain lists shared by all rules
type ClassificationContext struct {
	// EnterpriseDomains are the protected organization's own domains (e.g., "enterprise.example")
	// Subdomains of a listed domain are enterprise too
	EnterpriseDomains []string

	// DangerousDomains are known phishing hosts or domains
	DangerousDomains []string
}

// NewClassificationContext creates a classification context, normalizing every entry
func NewClassificationContext(enterpriseDomains, dangerousDomains []string) *ClassificationContext {
	return &ClassificationContext{
		EnterpriseDomains: normalizeList(enterpriseDomains),
		DangerousDomains:  normalizeList(dangerousDomains),
	}
}

func normalizeList(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if host := HostFromURL(d); host != "" {
			out = append(out, host)
		}
	}
	return out
}
