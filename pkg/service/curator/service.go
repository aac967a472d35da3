package curator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// ErrDiscarded signals that the evidence did not survive curation. No side
// effects should be recorded for a discarded input.
var ErrDiscarded = goerr.New("evidence discarded by curation")

const dedupCandidates = 3

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
	fragments interfaces.FragmentRepository
	policy    *model.Policy
}

// New creates a curator backed by the given LLM client. The fragment
// repository is consulted for near-duplicate detection.
func New(llmClient gollem.LLMClient, fragments interfaces.FragmentRepository, policy *model.Policy) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	if fragments == nil {
		return nil, goerr.New("fragment repository is required")
	}
	if policy == nil {
		return nil, goerr.New("policy is required")
	}

	return &client{
		llmClient: llmClient,
		fragments: fragments,
		policy:    policy,
	}, nil
}

// Curate summarizes one piece of raw evidence for a company topic
func (c *client) Curate(ctx context.Context, input Input) (*Result, error) {
	raw := strings.TrimSpace(input.RawText)
	if len(raw) < c.policy.MinFragmentChars {
		return nil, goerr.Wrap(ErrDiscarded, "raw evidence below minimum length",
			goerr.V("length", len(raw)),
			goerr.V("min", c.policy.MinFragmentChars),
		)
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt(c.policy.MaxSummaryWords)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(input)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate summary from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var llmResp llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &llmResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	if !llmResp.Relevant || strings.TrimSpace(llmResp.Summary) == "" {
		return nil, goerr.Wrap(ErrDiscarded, "evidence judged irrelevant",
			goerr.V("slug", input.Slug),
			goerr.V("topic", input.Topic),
		)
	}

	summary := capWords(llmResp.Summary, c.policy.MaxSummaryWords)

	embedding, err := c.generateEmbedding(ctx, summary)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding",
			goerr.V("slug", input.Slug),
			goerr.V("topic", input.Topic),
		)
	}

	result := &Result{
		Summary:     summary,
		Confidence:  parseConfidence(llmResp.Confidence),
		Embedding:   embedding,
		InputChars:  len(raw),
		OutputChars: len(summary),
	}

	duplicate, err := c.findDuplicate(ctx, input, embedding)
	if err != nil {
		// Dedup is best effort; a failed lookup must not lose the evidence
		logging.From(ctx).Warn("duplicate lookup failed, keeping fragment",
			"slug", input.Slug,
			"topic", input.Topic,
			"error", err,
		)
	}
	result.DuplicateOf = duplicate

	return result, nil
}

// findDuplicate returns a stored fragment whose summary is close enough to the
// new embedding to treat the evidence as already known.
func (c *client) findDuplicate(ctx context.Context, input Input, embedding []float32) (*model.Fragment, error) {
	nearest, err := c.fragments.FindNearest(ctx, input.Slug, input.Topic, embedding, dedupCandidates)
	if err != nil {
		return nil, err
	}

	var best *model.Fragment
	bestScore := 0.0
	for _, candidate := range nearest {
		score := model.CosineSimilarity(embedding, candidate.Embedding)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if best != nil && bestScore >= c.policy.DedupThreshold {
		return best, nil
	}
	return nil, nil
}

func parseConfidence(s string) model.Confidence {
	switch model.Confidence(strings.ToLower(s)) {
	case model.ConfidenceHigh:
		return model.ConfidenceHigh
	case model.ConfidenceLow:
		return model.ConfidenceLow
	default:
		return model.ConfidenceMedium
	}
}

// capWords truncates text to at most max words
func capWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[:max], " ")
}

func buildSystemPrompt(maxWords int) string {
	var sb strings.Builder

	sb.WriteString("You are a due diligence analyst. Your task is to compress raw evidence about a company into a factual summary.\n\n")
	sb.WriteString("## Instructions:\n\n")
	fmt.Fprintf(&sb, "1. Summarize only what the evidence states. The summary must stay under %d words.\n", maxWords)
	sb.WriteString("2. Keep concrete facts: figures, dates, names, outcomes.\n")
	sb.WriteString("3. Set relevant to false if the evidence says nothing about the named company or the topic.\n")
	sb.WriteString("4. Rate confidence by the apparent reliability of the source: high for filings and primary reporting, medium for secondary coverage, low for opinion or unclear provenance.\n")
	sb.WriteString("5. When known context is provided, set relevant to false if the evidence adds nothing beyond it.\n")
	sb.WriteString("6. Write the summary in the same language as the evidence.\n")

	return sb.String()
}

func buildUserPrompt(input Input) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Company: %s\n", input.CompanyName)
	fmt.Fprintf(&sb, "Topic: %s\n", input.Topic)
	fmt.Fprintf(&sb, "Source: %s (%s)\n", input.SourceID, input.SourceURL)
	fmt.Fprintf(&sb, "Retrieved: %s\n\n", input.RetrievedAt.Format("2006-01-02"))
	if input.KnownContext != "" {
		sb.WriteString("## Known context:\n\n")
		sb.WriteString(input.KnownContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString("## Evidence:\n\n")
	sb.WriteString(input.RawText)
	sb.WriteString("\n")

	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "CurationResponse",
		Description: "Bounded summary of one piece of evidence",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "Factual summary of the evidence",
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeString,
				Description: "Source reliability: high, medium or low",
				Required:    true,
			},
			"relevant": {
				Type:        gollem.TypeBoolean,
				Description: "Whether the evidence concerns the company and topic",
				Required:    true,
			},
		},
	}
}

// generateEmbedding generates an embedding vector for the given text
func (c *client) generateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}

	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}
