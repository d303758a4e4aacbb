package detection

import (
	"fmt"

	"github.com/stoik/phishcatch/internal/domain"
)

// LookalikeStrategy flags hosts whose registrable domain is a near-miss of an enterprise domain
type LookalikeStrategy struct{}

// NewLookalikeStrategy creates a new enterprise lookalike detection strategy
func NewLookalikeStrategy() *LookalikeStrategy {
	return &LookalikeStrategy{}
}

// Name returns the strategy name
func (s *LookalikeStrategy) Name() string {
	return "Enterprise Lookalike"
}

// Classify checks if the host's registrable domain is similar to an enterprise domain
func (s *LookalikeStrategy) Classify(host string, context *ClassificationContext) *Verdict {
	// The real enterprise hosts are handled by the list rule
	if _, ok := matchListedDomain(host, context.EnterpriseDomains); ok {
		return nil
	}

	candidate := RegistrableDomain(host)

	for _, enterpriseDomain := range context.EnterpriseDomains {
		target := RegistrableDomain(enterpriseDomain)
		if candidate == target {
			continue
		}

		distance := levenshteinDistance(candidate, target)
		maxLen := float64(max(len(candidate), len(target)))
		similarity := (1.0 - float64(distance)/maxLen) * 100

		// Same threshold as sender typosquatting: close but not identical
		if similarity > 85 && similarity < 100 {
			return &Verdict{
				Type: domain.DomainDangerous,
				Reason: fmt.Sprintf(
					"domain '%s' is %.1f%% similar to enterprise domain '%s'",
					candidate, similarity, target,
				),
			}
		}
	}

	return nil
}
