package detection

import (
	"fmt"

	"github.com/stoik/phishcatch/internal/domain"
)

// EnterpriseListStrategy marks hosts on (or under) a configured enterprise domain
type EnterpriseListStrategy struct{}

// NewEnterpriseListStrategy creates the enterprise list rule
func NewEnterpriseListStrategy() *EnterpriseListStrategy {
	return &EnterpriseListStrategy{}
}

// Name returns the strategy name
func (s *EnterpriseListStrategy) Name() string {
	return "Enterprise List"
}

// Classify checks the host against the enterprise list
func (s *EnterpriseListStrategy) Classify(host string, context *ClassificationContext) *Verdict {
	if listed, ok := matchListedDomain(host, context.EnterpriseDomains); ok {
		return &Verdict{
			Type:   domain.DomainEnterprise,
			Reason: fmt.Sprintf("host '%s' is under enterprise domain '%s'", host, listed),
		}
	}
	return nil
}

// DangerousListStrategy marks hosts on (or under) a known dangerous domain
type DangerousListStrategy struct{}

// NewDangerousListStrategy creates the dangerous list rule
func NewDangerousListStrategy() *DangerousListStrategy {
	return &DangerousListStrategy{}
}

// Name returns the strategy name
func (s *DangerousListStrategy) Name() string {
	return "Dangerous List"
}

// Classify checks the host against the dangerous list
func (s *DangerousListStrategy) Classify(host string, context *ClassificationContext) *Verdict {
	if listed, ok := matchListedDomain(host, context.DangerousDomains); ok {
		return &Verdict{
			Type:   domain.DomainDangerous,
			Reason: fmt.Sprintf("host '%s' is under dangerous domain '%s'", host, listed),
		}
	}
	return nil
}
