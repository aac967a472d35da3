package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/repository/memory"
)

func runLedgerRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newEvent := func(slug types.CompanySlug, at time.Time) *model.CurationEvent {
		return &model.CurationEvent{
			Timestamp:   at,
			Slug:        slug,
			SourceID:    "serper:a1b2c3",
			Topic:       "litigation",
			InputChars:  4200,
			OutputChars: 310,
		}
	}

	t.Run("Append records events and ListSince returns them", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
		gt.NoError(t, repo.Ledger().Append(ctx, newEvent("acme-holdings", at))).Required()
		gt.NoError(t, repo.Ledger().Append(ctx, newEvent("beta-corp", at.Add(time.Minute)))).Required()

		events, err := repo.Ledger().ListSince(ctx, at)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(2)
	})

	t.Run("Append defaults a zero timestamp to now", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		event := newEvent("acme-holdings", time.Time{})
		gt.NoError(t, repo.Ledger().Append(ctx, event)).Required()

		events, err := repo.Ledger().ListSince(ctx, time.Now().Add(-time.Minute))
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1)
		gt.Bool(t, events[0].Timestamp.IsZero()).False()
	})

	t.Run("ListSince excludes events before the cutoff", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		old := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		recent := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		gt.NoError(t, repo.Ledger().Append(ctx, newEvent("acme-holdings", old))).Required()
		gt.NoError(t, repo.Ledger().Append(ctx, newEvent("acme-holdings", recent))).Required()

		events, err := repo.Ledger().ListSince(ctx, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1)
		gt.Value(t, events[0].Timestamp.UTC()).Equal(recent)
	})

	t.Run("ListSince includes events at the exact cutoff", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		gt.NoError(t, repo.Ledger().Append(ctx, newEvent("acme-holdings", at))).Required()

		events, err := repo.Ledger().ListSince(ctx, at)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1)
	})

	t.Run("Duplicate events are all retained", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		event := newEvent("acme-holdings", at)
		gt.NoError(t, repo.Ledger().Append(ctx, event)).Required()
		gt.NoError(t, repo.Ledger().Append(ctx, event)).Required()

		events, err := repo.Ledger().ListSince(ctx, at)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(2)
	})

	t.Run("Concurrent appends lose nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 20
		at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				event := newEvent("acme-holdings", at.Add(time.Duration(n)*time.Second))
				if err := repo.Ledger().Append(ctx, event); err != nil {
					t.Errorf("append failed: %v", err)
				}
			}(i)
		}
		wg.Wait()

		events, err := repo.Ledger().ListSince(ctx, at)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(workers)
	})
}

func TestMemoryLedgerRepository(t *testing.T) {
	runLedgerRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreLedgerRepository(t *testing.T) {
	runLedgerRepositoryTest(t, newFirestoreRepository)
}
