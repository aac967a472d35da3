package usecase

import (
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/service/curator"
	"github.com/duedil-lab/diligent/pkg/service/evidence"
	"github.com/duedil-lab/diligent/pkg/service/notify"
	"github.com/duedil-lab/diligent/pkg/service/retrieval"
)

type UseCases struct {
	repo     interfaces.Repository
	policy   *model.Policy
	source   evidence.Source
	curator  curator.Service
	fetcher  evidence.Fetcher
	notifier notify.Notifier
	plans    []model.Plan
	now      func() time.Time

	Job           *JobUseCase
	Investigation *InvestigationUseCase
	Playbook      *PlaybookUseCase
	Usage         *UsageUseCase
}

type Option func(*UseCases)

// WithPolicy overrides the default investigation policy
func WithPolicy(policy *model.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithPageFetcher enables expanding short search snippets into full page text
func WithPageFetcher(fetcher evidence.Fetcher) Option {
	return func(uc *UseCases) {
		uc.fetcher = fetcher
	}
}

// WithNotifier sets the terminal status notifier
func WithNotifier(notifier notify.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

// WithPlans overrides the plan catalog
func WithPlans(plans []model.Plan) Option {
	return func(uc *UseCases) {
		uc.plans = plans
	}
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, source evidence.Source, curatorSvc curator.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		policy:   model.DefaultPolicy(),
		source:   source,
		curator:  curatorSvc,
		notifier: notify.Discard{},
		plans:    model.DefaultPlanCatalog(),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	gateway := retrieval.New(repo.Document(), repo.Fragment())

	uc.Investigation = newInvestigationUseCase(repo, uc.policy, source, curatorSvc, uc.fetcher, gateway, uc.notifier, uc.now)
	uc.Job = newJobUseCase(repo, uc.policy, uc.plans, uc.Investigation, uc.now)
	uc.Playbook = NewPlaybookUseCase(repo, uc.policy)
	uc.Usage = NewUsageUseCase(repo, uc.now)

	return uc
}

// Plans returns the configured plan catalog
func (uc *UseCases) Plans() []model.Plan {
	return uc.plans
}
