package curator

import (
	"context"
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// Service defines the interface for compressing raw evidence into bounded,
// deduplicated knowledge.
type Service interface {
	// Curate summarizes one piece of raw evidence for a company topic. Raw
	// text below the policy minimum is rejected with ErrDiscarded. When the
	// summary duplicates an already stored fragment, Result.DuplicateOf names
	// it and no new fragment should be persisted.
	Curate(ctx context.Context, input Input) (*Result, error)
}

// Input represents one piece of raw evidence to curate
type Input struct {
	Slug        types.CompanySlug
	CompanyName string
	Topic       string
	SourceID    string
	SourceURL   string
	RetrievedAt time.Time
	RawText     string

	// KnownContext is what the knowledge document already says about the
	// topic. Empty when the topic has no section yet.
	KnownContext string
}

// Result represents the curated form of the evidence
type Result struct {
	Summary     string
	Confidence  model.Confidence
	Embedding   []float32
	DuplicateOf *model.Fragment // non-nil when folded into an existing fragment
	InputChars  int
	OutputChars int
}

// llmResponse is the structured output from the LLM
type llmResponse struct {
	Summary    string `json:"summary"`
	Confidence string `json:"confidence"` // high, medium or low
	Relevant   bool   `json:"relevant"`
}
