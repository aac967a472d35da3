package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
)

// UsageUseCase aggregates the curation ledger into windowed cost summaries
type UsageUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// NewUsageUseCase builds a standalone usage aggregation use case
func NewUsageUseCase(repo interfaces.Repository, now func() time.Time) *UsageUseCase {
	return &UsageUseCase{repo: repo, now: now}
}

// WindowedSummary sums curation events within the window ending now, with a
// per-company breakdown.
func (uc *UsageUseCase) WindowedSummary(ctx context.Context, window time.Duration) (*model.UsageSummary, error) {
	if window <= 0 {
		return nil, goerr.Wrap(ErrInvalidRequest, "window must be positive", goerr.V("window", window))
	}

	since := uc.now().Add(-window)
	events, err := uc.repo.Ledger().ListSince(ctx, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list curation events", goerr.V("since", since))
	}

	summary := &model.UsageSummary{
		WindowSeconds: int(window.Seconds()),
		PerCompany:    make(map[string]model.CompanyUsage),
	}

	for _, event := range events {
		summary.EventCount++
		summary.InputChars += event.InputChars
		summary.OutputChars += event.OutputChars

		company := summary.PerCompany[event.Slug.String()]
		company.EventCount++
		company.InputChars += event.InputChars
		company.OutputChars += event.OutputChars
		summary.PerCompany[event.Slug.String()] = company
	}

	return summary, nil
}
