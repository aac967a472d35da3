package types

import "fmt"

// PlanTier selects the investigation depth and the cycle budget of a run
type PlanTier string

const (
	PlanTierStandard PlanTier = "standard"
	PlanTierDeep     PlanTier = "deep"
	PlanTierPro      PlanTier = "pro"
)

// AllPlanTiers returns all valid plan tiers
func AllPlanTiers() []PlanTier {
	return []PlanTier{
		PlanTierStandard,
		PlanTierDeep,
		PlanTierPro,
	}
}

// IsValid checks if the plan tier is valid
func (p PlanTier) IsValid() bool {
	switch p {
	case PlanTierStandard, PlanTierDeep, PlanTierPro:
		return true
	default:
		return false
	}
}

// CycleBudget returns the maximum number of search/critique cycles for the tier
func (p PlanTier) CycleBudget() int {
	switch p {
	case PlanTierPro:
		return 12
	case PlanTierDeep:
		return 8
	default:
		return 5
	}
}

// String returns the string representation of the plan tier
func (p PlanTier) String() string {
	return string(p)
}

// ParsePlanTier parses a string into a PlanTier. Empty defaults to standard.
func ParsePlanTier(s string) (PlanTier, error) {
	if s == "" {
		return PlanTierStandard, nil
	}
	tier := PlanTier(s)
	if !tier.IsValid() {
		return "", fmt.Errorf("invalid plan tier: %s", s)
	}
	return tier, nil
}
