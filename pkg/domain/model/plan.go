package model

import "github.com/duedil-lab/diligent/pkg/domain/types"

// Plan describes one purchasable investigation tier exposed to clients
type Plan struct {
	ID       types.PlanTier `json:"id"`
	Name     string         `json:"name"`
	PriceCNY int            `json:"price_cny"`
	Tagline  string         `json:"tagline,omitempty"`
	Features []string       `json:"features,omitempty"`
}

// DefaultPlanCatalog returns the built-in plan catalog
func DefaultPlanCatalog() []Plan {
	return []Plan{
		{
			ID:       types.PlanTierStandard,
			Name:     "Single check",
			PriceCNY: 25,
			Tagline:  "Flat 25 CNY, one 24-month open-source scan",
			Features: []string{
				"24-month public channel scan",
				"Company profile / compliance risk / sentiment radar",
				"Knowledge document snapshot",
			},
		},
		{
			ID:       types.PlanTierDeep,
			Name:     "Deep check",
			PriceCNY: 68,
			Tagline:  "Extended search cycles and source coverage",
			Features: []string{
				"Everything in single check",
				"Extended search/critique cycles",
				"Litigation and regulatory deep dive",
			},
		},
		{
			ID:       types.PlanTierPro,
			Name:     "Pro check",
			PriceCNY: 128,
			Tagline:  "Maximum cycle budget for contested profiles",
			Features: []string{
				"Everything in deep check",
				"Maximum cycle budget",
				"Full citation appendix",
			},
		},
	}
}

// FindPlan looks up a plan by tier in the catalog
func FindPlan(catalog []Plan, tier types.PlanTier) *Plan {
	for i := range catalog {
		if catalog[i].ID == tier {
			return &catalog[i]
		}
	}
	return nil
}
