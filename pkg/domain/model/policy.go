package model

import "github.com/m-mizutani/goerr/v2"

// Policy configures how an investigation judges coverage and bounds cost.
// The zero value is not usable; start from DefaultPolicy.
type Policy struct {
	// Topics every investigation must cover. Each becomes a gap at planning.
	Topics []string

	// MinFragmentChars is the minimum raw evidence length worth curating.
	MinFragmentChars int

	// MaxSummaryWords bounds curated summary length.
	MaxSummaryWords int

	// DedupThreshold is the cosine similarity above which a new summary is
	// folded into an existing fragment as an extra citation.
	DedupThreshold float64

	// FreshnessWithinWindow requires a citation's retrieval timestamp to fall
	// within the job's time window to count as adequate coverage. When false
	// any citation qualifies, and planning never resolves gaps up front: the
	// run re-confirms every topic before critique can close it.
	FreshnessWithinWindow bool

	// MaxCycles overrides the plan tier cycle budget when positive.
	MaxCycles int

	// KeepArchives is the number of archived document versions retained by
	// scheduled maintenance. Zero disables automatic pruning.
	KeepArchives int
}

// DefaultPolicy returns the built-in investigation policy
func DefaultPolicy() *Policy {
	return &Policy{
		Topics: []string{
			"financials",
			"leadership",
			"litigation",
			"market position",
			"compliance",
			"reputation",
		},
		MinFragmentChars:      80,
		MaxSummaryWords:       200,
		DedupThreshold:        0.92,
		FreshnessWithinWindow: true,
	}
}

// Validate checks the policy invariants
func (p *Policy) Validate() error {
	if len(p.Topics) == 0 {
		return goerr.New("policy requires at least one topic")
	}
	if p.MinFragmentChars < 0 {
		return goerr.New("min fragment chars must not be negative", goerr.V("value", p.MinFragmentChars))
	}
	if p.MaxSummaryWords <= 0 {
		return goerr.New("max summary words must be positive", goerr.V("value", p.MaxSummaryWords))
	}
	if p.DedupThreshold < 0 || p.DedupThreshold > 1 {
		return goerr.New("dedup threshold must be within [0, 1]", goerr.V("value", p.DedupThreshold))
	}
	if p.MaxCycles < 0 {
		return goerr.New("max cycles must not be negative", goerr.V("value", p.MaxCycles))
	}
	if p.KeepArchives < 0 {
		return goerr.New("keep archives must not be negative", goerr.V("value", p.KeepArchives))
	}
	return nil
}

// CycleBudget resolves the effective cycle budget for a job
func (p *Policy) CycleBudget(job *Job) int {
	if p.MaxCycles > 0 {
		return p.MaxCycles
	}
	return job.PlanTier.CycleBudget()
}
