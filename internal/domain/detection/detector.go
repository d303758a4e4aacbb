package detection

import (
	"context"
	"fmt"

	"github.com/stoik/phishcatch/internal/domain"
)

// ListClassifier classifies hosts from configured enterprise and dangerous domain lists
//
// It stands in for the external list source: the engine only depends on ports.DomainClassifier,
// so a remote classifier can replace it without touching the router.
type ListClassifier struct {
	strategies []ClassificationStrategy
	context    *ClassificationContext
}

// NewListClassifier creates a classifier with the list rules, plus the lookalike rule when enabled
func NewListClassifier(enterpriseDomains, dangerousDomains []string, detectLookalikes bool) *ListClassifier {
	context := NewClassificationContext(enterpriseDomains, dangerousDomains)

	strategies := []ClassificationStrategy{
		NewDangerousListStrategy(),
		NewEnterpriseListStrategy(),
	}
	if detectLookalikes {
		strategies = append(strategies, NewLookalikeStrategy())
	}

	return &ListClassifier{
		strategies: strategies,
		context:    context,
	}
}

// Classify returns the DomainType of host. Dangerous verdicts take precedence over Enterprise ones.
func (c *ListClassifier) Classify(ctx context.Context, host string) (domain.DomainType, error) {
	if err := ctx.Err(); err != nil {
		return domain.DomainIgnored, err
	}

	normalized := HostFromURL(host)
	if normalized == "" {
		return domain.DomainIgnored, fmt.Errorf("invalid host %q", host)
	}

	return c.ClassifyHost(normalized).Type, nil
}

// ClassifyHost runs every rule and returns the combined verdict
func (c *ListClassifier) ClassifyHost(host string) Verdict {
	result := Verdict{Type: domain.DomainIgnored}

	for _, strategy := range c.strategies {
		v := strategy.Classify(host, c.context)
		if v == nil {
			continue
		}
		if severity(v.Type) > severity(result.Type) {
			result = *v
		}
	}

	return result
}

func severity(t domain.DomainType) int {
	switch t {
	case domain.DomainDangerous:
		return 2
	case domain.DomainEnterprise:
		return 1
	default:
		return 0
	}
}
