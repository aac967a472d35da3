package curator_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/repository/memory"
	"github.com/duedil-lab/diligent/pkg/service/curator"
)

// mockLLM returns a deterministic LLM client whose sessions always answer
// with the given curation JSON and whose embeddings are a fixed unit vector.
func mockLLM(summary string, relevant bool) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
					body := fmt.Sprintf(`{"summary": %q, "confidence": "high", "relevant": %t}`, summary, relevant)
					return &gollem.Response{Texts: []string{body}}, nil
				},
			}, nil
		},
		GenerateEmbeddingFunc: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
			vec := make([]float64, dimension)
			vec[0] = 1
			return [][]float64{vec}, nil
		},
	}
}

func TestCurateBoundsSummary(t *testing.T) {
	policy := model.DefaultPolicy()
	rambling := strings.TrimSpace(strings.Repeat("word ", policy.MaxSummaryWords*2))
	llm := mockLLM(rambling, true)

	repo := memory.New()
	svc, err := curator.New(llm, repo.Fragment(), policy)
	gt.NoError(t, err).Required()

	result, err := svc.Curate(context.Background(), curator.Input{
		Slug:        "acme-holdings",
		CompanyName: "ACME Holdings",
		Topic:       "litigation",
		SourceID:    "serper:a1b2c3",
		RawText:     strings.Repeat("ACME settled another dispute. ", 10),
	})
	gt.NoError(t, err).Required()

	gt.Number(t, len(strings.Fields(result.Summary))).Equal(policy.MaxSummaryWords)
	gt.Number(t, len(result.Embedding)).Equal(model.EmbeddingDimension)
	gt.Number(t, result.OutputChars).Equal(len(result.Summary))
}

func TestCurateDiscardsShortEvidence(t *testing.T) {
	llm := mockLLM("should never be asked", true)

	repo := memory.New()
	svc, err := curator.New(llm, repo.Fragment(), model.DefaultPolicy())
	gt.NoError(t, err).Required()

	_, err = svc.Curate(context.Background(), curator.Input{
		Slug:    "acme-holdings",
		Topic:   "litigation",
		RawText: "ACME lawsuit.",
	})
	gt.Bool(t, errors.Is(err, curator.ErrDiscarded)).True()

	// rejected before any LLM cost
	gt.Number(t, len(llm.NewSessionCalls())).Equal(0)
	gt.Number(t, len(llm.GenerateEmbeddingCalls())).Equal(0)
}

func TestCurateDiscardsIrrelevantEvidence(t *testing.T) {
	llm := mockLLM("", false)

	repo := memory.New()
	svc, err := curator.New(llm, repo.Fragment(), model.DefaultPolicy())
	gt.NoError(t, err).Required()

	_, err = svc.Curate(context.Background(), curator.Input{
		Slug:    "acme-holdings",
		Topic:   "litigation",
		RawText: strings.Repeat("Nothing about the company here at all. ", 5),
	})
	gt.Bool(t, errors.Is(err, curator.ErrDiscarded)).True()
	gt.Number(t, len(llm.GenerateEmbeddingCalls())).Equal(0)
}

func TestCurateReportsDuplicate(t *testing.T) {
	policy := model.DefaultPolicy()
	llm := mockLLM("ACME settled the patent dispute for $12.5 million.", true)

	repo := memory.New()
	ctx := context.Background()

	embedding := make([]float32, model.EmbeddingDimension)
	embedding[0] = 1
	stored, err := repo.Fragment().Create(ctx, &model.Fragment{
		Slug:      "acme-holdings",
		Topic:     "litigation",
		Summary:   "ACME settled the patent dispute.",
		Embedding: embedding,
	})
	gt.NoError(t, err).Required()

	svc, err := curator.New(llm, repo.Fragment(), policy)
	gt.NoError(t, err).Required()

	result, err := svc.Curate(ctx, curator.Input{
		Slug:    "acme-holdings",
		Topic:   "litigation",
		RawText: strings.Repeat("ACME settled another dispute. ", 10),
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.DuplicateOf).NotNil()
	gt.Value(t, result.DuplicateOf.ID).Equal(stored.ID)
}

func TestCurate_WithRealGemini(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT not set")
	}

	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		t.Skip("TEST_GEMINI_LOCATION not set")
	}

	ctx := context.Background()

	llmClient, err := gemini.New(ctx, projectID, location)
	gt.NoError(t, err).Required()

	repo := memory.New()
	svc, err := curator.New(llmClient, repo.Fragment(), model.DefaultPolicy())
	gt.NoError(t, err).Required()

	baseInput := curator.Input{
		Slug:        "acme-holdings",
		CompanyName: "ACME Holdings",
		Topic:       "litigation",
		SourceID:    "serper:a1b2c3",
		SourceURL:   "https://example.com/filing",
		RetrievedAt: time.Now().UTC(),
	}

	t.Run("Curate summarizes relevant evidence", func(t *testing.T) {
		input := baseInput
		input.RawText = `ACME Holdings Inc. announced today that it has reached a settlement
in the patent infringement lawsuit filed by Widget Corp in the District Court of Delaware.
Under the terms of the settlement, ACME will pay Widget Corp $12.5 million and obtain a
license to the disputed patents through 2030. The lawsuit, filed in March 2024, had alleged
that ACME's flagship product line infringed three patents related to industrial automation.
ACME admitted no wrongdoing as part of the settlement.`

		result, err := svc.Curate(ctx, input)
		gt.NoError(t, err).Required()

		gt.String(t, result.Summary).NotEqual("")
		gt.Number(t, len(result.Embedding)).Equal(model.EmbeddingDimension)
		gt.Bool(t, result.Confidence == model.ConfidenceHigh ||
			result.Confidence == model.ConfidenceMedium ||
			result.Confidence == model.ConfidenceLow).True()
		gt.Number(t, result.InputChars).Equal(len(input.RawText))
		gt.Bool(t, result.OutputChars > 0).True()
	})

	t.Run("Curate discards short evidence", func(t *testing.T) {
		input := baseInput
		input.RawText = "ACME lawsuit."

		_, err := svc.Curate(ctx, input)
		gt.Bool(t, errors.Is(err, curator.ErrDiscarded)).True()
	})

	t.Run("Curate discards irrelevant evidence", func(t *testing.T) {
		input := baseInput
		input.RawText = `Grandma's chocolate chip cookie recipe: mix two cups of flour with
one cup of butter and a cup of chocolate chips, then bake at 350 degrees for twelve minutes.
Let the cookies cool on a wire rack before serving them with a glass of cold milk.`

		_, err := svc.Curate(ctx, input)
		gt.Bool(t, errors.Is(err, curator.ErrDiscarded)).True()
	})
}

func TestNewValidation(t *testing.T) {
	repo := memory.New()

	_, err := curator.New(nil, repo.Fragment(), model.DefaultPolicy())
	gt.Value(t, err).NotNil()
}
