package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/utils/async"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// JobUseCase handles investigation job submission and status queries
type JobUseCase struct {
	repo          interfaces.Repository
	policy        *model.Policy
	plans         []model.Plan
	investigation *InvestigationUseCase
	now           func() time.Time
}

func newJobUseCase(repo interfaces.Repository, policy *model.Policy, plans []model.Plan, investigation *InvestigationUseCase, now func() time.Time) *JobUseCase {
	return &JobUseCase{
		repo:          repo,
		policy:        policy,
		plans:         plans,
		investigation: investigation,
		now:           now,
	}
}

// SubmitRequest carries the submission parameters for a new investigation
type SubmitRequest struct {
	CompanyName      string
	CompanySite      string
	JurisdictionHint string
	ReportLanguage   string
	TimeWindowMonths int
	PlanID           string
	AddOns           []string
}

// Submit validates a request, reserves the company slug and dispatches the
// investigation run. It returns as soon as the job is persisted; callers poll
// Get for progress. A company already under investigation is rejected with
// ErrCompanyBusy before anything is persisted.
func (uc *JobUseCase) Submit(ctx context.Context, req *SubmitRequest) (*model.Job, error) {
	if req.CompanyName == "" {
		return nil, goerr.Wrap(ErrInvalidRequest, "company name is required")
	}

	window, err := types.ParseTimeWindow(req.TimeWindowMonths)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid time window",
			goerr.V("months", req.TimeWindowMonths))
	}

	tier, err := types.ParsePlanTier(req.PlanID)
	if err != nil {
		return nil, goerr.Wrap(ErrUnknownPlan, "invalid plan", goerr.V("planID", req.PlanID))
	}
	if model.FindPlan(uc.plans, tier) == nil {
		return nil, goerr.Wrap(ErrUnknownPlan, "plan is not in the catalog", goerr.V("planID", req.PlanID))
	}

	job := model.NewJob(req.CompanyName, window, tier)
	job.CompanySite = req.CompanySite
	job.JurisdictionHint = req.JurisdictionHint
	job.ReportLanguage = req.ReportLanguage
	job.AddOns = req.AddOns

	if err := job.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid job", goerr.V("cause", err.Error()))
	}

	// Reserve the slug before persisting anything so a concurrent submission
	// for the same company fails fast with nothing to clean up.
	if err := uc.repo.Lease().Acquire(ctx, job.CompanySlug, job.ID); err != nil {
		if isSlugBusy(err) {
			return nil, goerr.Wrap(ErrCompanyBusy, "company slug is leased",
				goerr.V("slug", job.CompanySlug))
		}
		return nil, goerr.Wrap(err, "failed to acquire company lease", goerr.V("slug", job.CompanySlug))
	}

	created, err := uc.repo.Job().Create(ctx, job)
	if err != nil {
		if releaseErr := uc.repo.Lease().Release(ctx, job.CompanySlug, job.ID); releaseErr != nil {
			logging.From(ctx).Error("failed to release lease after create failure",
				"slug", job.CompanySlug, "error", releaseErr)
		}
		return nil, goerr.Wrap(err, "failed to create job")
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.investigation.Run(ctx, created.ID, created.CompanySlug)
	})

	return created, nil
}

// awaitPollInterval is how often Await re-reads the job status
const awaitPollInterval = 500 * time.Millisecond

// Await blocks until the job reaches a terminal status or the context is
// cancelled. Used by the one-shot CLI path.
func (uc *JobUseCase) Await(ctx context.Context, id types.JobID) (*model.Job, error) {
	ticker := time.NewTicker(awaitPollInterval)
	defer ticker.Stop()

	for {
		job, err := uc.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "cancelled while awaiting job", goerr.V("jobID", id))
		case <-ticker.C:
		}
	}
}

// Get retrieves a job by ID
func (uc *JobUseCase) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	job, err := uc.repo.Job().Get(ctx, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrJobNotFound, "no such job", goerr.V("jobID", id))
		}
		return nil, goerr.Wrap(err, "failed to get job", goerr.V("jobID", id))
	}

	return job, nil
}

// ListByStatus retrieves jobs in the given status, newest first
func (uc *JobUseCase) ListByStatus(ctx context.Context, status types.JobStatus) ([]*model.Job, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(ErrInvalidRequest, "invalid job status", goerr.V("status", status))
	}

	jobs, err := uc.repo.Job().ListByStatus(ctx, status)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs", goerr.V("status", status))
	}

	return jobs, nil
}
