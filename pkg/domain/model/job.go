package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// Job represents one investigation run for a company. The orchestrator owns
// the job lifecycle; a job in a terminal status is never mutated again.
type Job struct {
	ID               types.JobID
	CompanyName      string
	CompanySlug      types.CompanySlug
	CompanySite      string
	JurisdictionHint string
	ReportLanguage   string
	TimeWindow       types.TimeWindow
	PlanTier         types.PlanTier
	AddOns           []string
	Status           types.JobStatus
	Result           *JobResult
	ErrorDetail      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// JobResult holds the final report and the document version it was composed
// from.
type JobResult struct {
	Report          string
	DocumentVersion types.VersionKey
	UnresolvedGaps  []string
}

// NewJob builds a pending job from submission parameters
func NewJob(companyName string, window types.TimeWindow, tier types.PlanTier) *Job {
	return &Job{
		ID:          types.NewJobID(),
		CompanyName: companyName,
		CompanySlug: types.NewCompanySlug(companyName),
		TimeWindow:  window,
		PlanTier:    tier,
		Status:      types.JobStatusPending,
	}
}

// Validate checks the job invariants
func (j *Job) Validate() error {
	if j.CompanyName == "" {
		return goerr.New("company name is required")
	}
	if j.CompanySlug.IsEmpty() {
		return goerr.New("company slug is required", goerr.V("company", j.CompanyName))
	}
	if !j.TimeWindow.IsValid() {
		return goerr.New("invalid time window", goerr.V("months", j.TimeWindow.Months()))
	}
	if !j.PlanTier.IsValid() {
		return goerr.New("invalid plan tier", goerr.V("tier", j.PlanTier))
	}
	if !j.Status.IsValid() {
		return goerr.New("invalid job status", goerr.V("status", j.Status))
	}
	return nil
}

// Clone returns a deep copy of the job
func (j *Job) Clone() *Job {
	copied := *j
	if j.AddOns != nil {
		copied.AddOns = make([]string, len(j.AddOns))
		copy(copied.AddOns, j.AddOns)
	}
	if j.Result != nil {
		result := *j.Result
		if j.Result.UnresolvedGaps != nil {
			result.UnresolvedGaps = make([]string, len(j.Result.UnresolvedGaps))
			copy(result.UnresolvedGaps, j.Result.UnresolvedGaps)
		}
		copied.Result = &result
	}
	return &copied
}
