package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/repository/firestore"
	"github.com/duedil-lab/diligent/pkg/repository/memory"
)

// testEmbedding builds a full-dimension vector dominated by one axis so
// cosine ordering between test vectors is unambiguous.
func testEmbedding(axis int, weight float32) []float32 {
	v := make([]float32, model.EmbeddingDimension)
	for i := range v {
		v[i] = 0.001
	}
	v[axis] = weight
	return v
}

func runFragmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	slug := types.CompanySlug("acme-holdings")
	topic := "litigation"

	newFragment := func(retrievedAt time.Time) *model.Fragment {
		return &model.Fragment{
			Slug:        slug,
			Topic:       topic,
			SourceID:    fmt.Sprintf("serper:%d", retrievedAt.UnixNano()),
			SourceURL:   "https://example.com/filing",
			RetrievedAt: retrievedAt,
			RawText:     "ACME Holdings settled a patent dispute in early 2026.",
			Summary:     "Patent dispute settled in early 2026.",
			Embedding:   testEmbedding(0, 1.0),
		}
	}

	t.Run("Create assigns ID and CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Fragment().Create(ctx, newFragment(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)))
		gt.NoError(t, err).Required()
		gt.String(t, created.ID.String()).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Value(t, created.Slug).Equal(slug)
		gt.Value(t, created.Topic).Equal(topic)
	})

	t.Run("Create preserves a provided ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		fragment := newFragment(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
		fragment.ID = types.FragmentID(fmt.Sprintf("custom-%d", time.Now().UnixNano()))

		created, err := repo.Fragment().Create(ctx, fragment)
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(fragment.ID)
	})

	t.Run("Get round-trips stored fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Fragment().Create(ctx, newFragment(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)))
		gt.NoError(t, err).Required()

		retrieved, err := repo.Fragment().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.SourceID).Equal(created.SourceID)
		gt.Value(t, retrieved.SourceURL).Equal(created.SourceURL)
		gt.Value(t, retrieved.RawText).Equal(created.RawText)
		gt.Value(t, retrieved.Summary).Equal(created.Summary)
		gt.Array(t, retrieved.Embedding).Length(model.EmbeddingDimension)
	})

	t.Run("Get returns not found for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Fragment().Get(ctx, "no-such-fragment")
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})

	t.Run("ListByTopic returns matching fragments newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		older := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
		newer := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

		_, err := repo.Fragment().Create(ctx, newFragment(older))
		gt.NoError(t, err).Required()
		_, err = repo.Fragment().Create(ctx, newFragment(newer))
		gt.NoError(t, err).Required()

		other := newFragment(newer)
		other.Topic = "sanctions"
		_, err = repo.Fragment().Create(ctx, other)
		gt.NoError(t, err).Required()

		fragments, err := repo.Fragment().ListByTopic(ctx, slug, topic)
		gt.NoError(t, err).Required()
		gt.Array(t, fragments).Length(2)
		gt.Value(t, fragments[0].RetrievedAt.UTC()).Equal(newer)
		gt.Value(t, fragments[1].RetrievedAt.UTC()).Equal(older)
	})

	t.Run("ListSince excludes fragments before the cutoff", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		stale := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		fresh := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

		_, err := repo.Fragment().Create(ctx, newFragment(stale))
		gt.NoError(t, err).Required()
		_, err = repo.Fragment().Create(ctx, newFragment(fresh))
		gt.NoError(t, err).Required()

		fragments, err := repo.Fragment().ListSince(ctx, slug, topic, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
		gt.NoError(t, err).Required()
		gt.Array(t, fragments).Length(1)
		gt.Value(t, fragments[0].RetrievedAt.UTC()).Equal(fresh)
	})

	t.Run("ListSince includes fragments at the exact cutoff", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		_, err := repo.Fragment().Create(ctx, newFragment(cutoff))
		gt.NoError(t, err).Required()

		fragments, err := repo.Fragment().ListSince(ctx, slug, topic, cutoff)
		gt.NoError(t, err).Required()
		gt.Array(t, fragments).Length(1)
	})

	t.Run("FindNearest orders by embedding similarity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		retrievedAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

		near := newFragment(retrievedAt)
		near.Summary = "near"
		near.Embedding = testEmbedding(0, 1.0)
		_, err := repo.Fragment().Create(ctx, near)
		gt.NoError(t, err).Required()

		far := newFragment(retrievedAt)
		far.Summary = "far"
		far.Embedding = testEmbedding(1, 1.0)
		_, err = repo.Fragment().Create(ctx, far)
		gt.NoError(t, err).Required()

		results, err := repo.Fragment().FindNearest(ctx, slug, topic, testEmbedding(0, 0.9), 2)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2)
		gt.Value(t, results[0].Summary).Equal("near")
		gt.Value(t, results[1].Summary).Equal("far")
	})

	t.Run("FindNearest honors the limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		retrievedAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			_, err := repo.Fragment().Create(ctx, newFragment(retrievedAt))
			gt.NoError(t, err).Required()
		}

		results, err := repo.Fragment().FindNearest(ctx, slug, topic, testEmbedding(0, 1.0), 3)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(3)
	})

	t.Run("PruneOld keeps the newest fragments", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			_, err := repo.Fragment().Create(ctx, newFragment(base.Add(time.Duration(i)*time.Hour)))
			gt.NoError(t, err).Required()
		}

		removed, err := repo.Fragment().PruneOld(ctx, slug, 2)
		gt.NoError(t, err).Required()
		gt.Number(t, removed).Equal(3)

		fragments, err := repo.Fragment().ListByTopic(ctx, slug, topic)
		gt.NoError(t, err).Required()
		gt.Array(t, fragments).Length(2)
		gt.Value(t, fragments[0].RetrievedAt.UTC()).Equal(base.Add(4 * time.Hour))
		gt.Value(t, fragments[1].RetrievedAt.UTC()).Equal(base.Add(3 * time.Hour))
	})

	t.Run("PruneOld with enough room removes nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Fragment().Create(ctx, newFragment(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
		gt.NoError(t, err).Required()

		removed, err := repo.Fragment().PruneOld(ctx, slug, 10)
		gt.NoError(t, err).Required()
		gt.Number(t, removed).Equal(0)
	})
}

func TestMemoryFragmentRepository(t *testing.T) {
	runFragmentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreFragmentRepository(t *testing.T) {
	runFragmentRepositoryTest(t, newFirestoreRepository)
}
