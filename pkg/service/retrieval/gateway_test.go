package retrieval_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/repository/memory"
	"github.com/duedil-lab/diligent/pkg/service/retrieval"
)

func TestRetrieve(t *testing.T) {
	slug := types.CompanySlug("acme-holdings")
	topic := "litigation"

	storeFragment := func(t *testing.T, repo *memory.Memory, retrievedAt time.Time, summary string) {
		t.Helper()
		_, err := repo.Fragment().Create(context.Background(), &model.Fragment{
			Slug:        slug,
			Topic:       topic,
			SourceID:    "serper:a1b2c3",
			RetrievedAt: retrievedAt,
			Summary:     summary,
		})
		gt.NoError(t, err).Required()
	}

	t.Run("no document returns all fragments as fresh", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())

		storeFragment(t, repo, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "finding")

		result, err := gateway.Retrieve(context.Background(), slug, topic)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Excerpt).Nil()
		gt.Array(t, result.Fresh).Length(1)
	})

	t.Run("excerpt first then fragments newer than the section", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		ctx := context.Background()

		sectionAt := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
		doc := model.NewDocument(slug)
		doc.SetSection(topic, "Curated litigation summary.", nil, sectionAt)
		gt.NoError(t, repo.Document().Replace(ctx, slug, doc)).Required()

		storeFragment(t, repo, sectionAt.Add(-time.Hour), "already folded in")
		storeFragment(t, repo, sectionAt.Add(time.Hour), "new finding")

		result, err := gateway.Retrieve(ctx, slug, topic)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Excerpt).NotNil()
		gt.Value(t, result.Excerpt.Text).Equal("Curated litigation summary.")
		gt.Array(t, result.Fresh).Length(1)
		gt.Value(t, result.Fresh[0].Summary).Equal("new finding")
	})
}

func TestCoverage(t *testing.T) {
	slug := types.CompanySlug("acme-holdings")
	topic := "litigation"
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	window := 24 * 30 * 24 * time.Hour

	replaceDoc := func(t *testing.T, repo *memory.Memory, text string, citations []model.Citation) {
		t.Helper()
		doc := model.NewDocument(slug)
		doc.SetSection(topic, text, citations, now)
		gt.NoError(t, repo.Document().Replace(context.Background(), slug, doc)).Required()
	}

	t.Run("no document", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())

		covered, err := gateway.Coverage(context.Background(), slug, topic, window, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).False()
	})

	t.Run("section without citations", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		replaceDoc(t, repo, "some text", nil)

		covered, err := gateway.Coverage(context.Background(), slug, topic, window, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).False()
	})

	t.Run("only stale citations", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		replaceDoc(t, repo, "some text", []model.Citation{
			{SourceID: "s:1", RetrievedAt: now.Add(-window - time.Hour)},
		})

		covered, err := gateway.Coverage(context.Background(), slug, topic, window, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).False()
	})

	t.Run("fresh citation covers", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		replaceDoc(t, repo, "some text", []model.Citation{
			{SourceID: "s:1", RetrievedAt: now.Add(-window - time.Hour)},
			{SourceID: "s:2", RetrievedAt: now.Add(-time.Hour)},
		})

		covered, err := gateway.Coverage(context.Background(), slug, topic, window, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).True()
	})

	t.Run("zero window accepts stale citations", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		replaceDoc(t, repo, "some text", []model.Citation{
			{SourceID: "s:1", RetrievedAt: now.Add(-window - time.Hour)},
		})

		covered, err := gateway.Coverage(context.Background(), slug, topic, 0, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).True()
	})

	t.Run("zero window still requires a citation", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		replaceDoc(t, repo, "some text", nil)

		covered, err := gateway.Coverage(context.Background(), slug, topic, 0, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).False()
	})

	t.Run("empty section text never covers", func(t *testing.T) {
		repo := memory.New()
		gateway := retrieval.New(repo.Document(), repo.Fragment())
		replaceDoc(t, repo, "", []model.Citation{
			{SourceID: "s:1", RetrievedAt: now.Add(-time.Hour)},
		})

		covered, err := gateway.Coverage(context.Background(), slug, topic, window, now)
		gt.NoError(t, err).Required()
		gt.Bool(t, covered).False()
	})
}
