package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

func TestDefaultPolicy(t *testing.T) {
	policy := model.DefaultPolicy()
	gt.NoError(t, policy.Validate()).Required()
	gt.Bool(t, len(policy.Topics) > 0).True()
	gt.Bool(t, policy.FreshnessWithinWindow).True()
}

func TestPolicyValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *model.Policy)
	}{
		{"no topics", func(p *model.Policy) { p.Topics = nil }},
		{"negative min fragment chars", func(p *model.Policy) { p.MinFragmentChars = -1 }},
		{"zero max summary words", func(p *model.Policy) { p.MaxSummaryWords = 0 }},
		{"dedup threshold above one", func(p *model.Policy) { p.DedupThreshold = 1.5 }},
		{"negative max cycles", func(p *model.Policy) { p.MaxCycles = -1 }},
		{"negative keep archives", func(p *model.Policy) { p.KeepArchives = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := model.DefaultPolicy()
			tc.mutate(policy)
			gt.Value(t, policy.Validate()).NotNil()
		})
	}
}

func TestPolicyCycleBudget(t *testing.T) {
	job := model.NewJob("ACME Holdings", types.DefaultTimeWindow, types.PlanTierDeep)

	policy := model.DefaultPolicy()
	gt.Number(t, policy.CycleBudget(job)).Equal(8)

	policy.MaxCycles = 3
	gt.Number(t, policy.CycleBudget(job)).Equal(3)
}

func TestFindPlan(t *testing.T) {
	catalog := model.DefaultPlanCatalog()

	plan := model.FindPlan(catalog, types.PlanTierStandard)
	gt.Value(t, plan).NotNil()
	gt.Number(t, plan.PriceCNY).Equal(25)

	gt.Value(t, model.FindPlan(catalog, types.PlanTier("platinum"))).Nil()
}

func TestJobValidate(t *testing.T) {
	t.Run("valid job", func(t *testing.T) {
		job := model.NewJob("ACME Holdings", types.DefaultTimeWindow, types.PlanTierStandard)
		gt.NoError(t, job.Validate()).Required()
	})

	t.Run("missing company name", func(t *testing.T) {
		job := model.NewJob("", types.DefaultTimeWindow, types.PlanTierStandard)
		job.CompanyName = ""
		gt.Value(t, job.Validate()).NotNil()
	})

	t.Run("invalid time window", func(t *testing.T) {
		job := model.NewJob("ACME Holdings", types.TimeWindow(7), types.PlanTierStandard)
		gt.Value(t, job.Validate()).NotNil()
	})

	t.Run("invalid plan tier", func(t *testing.T) {
		job := model.NewJob("ACME Holdings", types.DefaultTimeWindow, types.PlanTier("platinum"))
		gt.Value(t, job.Validate()).NotNil()
	})
}
