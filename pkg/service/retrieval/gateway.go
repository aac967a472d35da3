package retrieval

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

func isNotFound(err error) bool {
	return goerr.HasTag(err, types.ErrTagNotFound)
}

// Context is what the gateway hands to a reader: the curated document section
// first as the authoritative statement, then fragments newer than the
// section's last update as provisional additions.
type Context struct {
	Slug    types.CompanySlug
	Topic   string
	Excerpt *model.Section    // nil when the document has no section yet
	Fresh   []*model.Fragment // newest first, not yet folded into the section
}

// Gateway reads the document store and fragment store together so callers
// always see curated knowledge before raw additions.
type Gateway struct {
	documents interfaces.DocumentRepository
	fragments interfaces.FragmentRepository
}

// New creates a retrieval gateway over the given repositories
func New(documents interfaces.DocumentRepository, fragments interfaces.FragmentRepository) *Gateway {
	return &Gateway{documents: documents, fragments: fragments}
}

// Retrieve assembles the reading context for a company topic
func (g *Gateway) Retrieve(ctx context.Context, slug types.CompanySlug, topic string) (*Context, error) {
	result := &Context{Slug: slug, Topic: topic}

	doc, err := g.documents.GetCurrent(ctx, slug)
	if err != nil && !isNotFound(err) {
		return nil, goerr.Wrap(err, "failed to load current document", goerr.V("slug", slug))
	}

	var sectionUpdatedAt time.Time
	if doc != nil {
		if section := doc.Section(topic); section != nil {
			result.Excerpt = section
			sectionUpdatedAt = section.UpdatedAt
		}
	}

	fresh, err := g.fragments.ListSince(ctx, slug, topic, sectionUpdatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list fresh fragments",
			goerr.V("slug", slug),
			goerr.V("topic", topic),
		)
	}
	result.Fresh = fresh

	return result, nil
}

// Coverage reports whether the current document covers a topic with at least
// one citation retrieved within the given window ending at now. A
// non-positive window drops the freshness requirement; any citation counts.
func (g *Gateway) Coverage(ctx context.Context, slug types.CompanySlug, topic string, window time.Duration, now time.Time) (bool, error) {
	doc, err := g.documents.GetCurrent(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to load current document", goerr.V("slug", slug))
	}

	section := doc.Section(topic)
	if section == nil || section.Text == "" {
		return false, nil
	}

	if window <= 0 {
		return len(section.Citations) > 0, nil
	}

	cutoff := now.Add(-window)
	for _, citation := range section.Citations {
		if !citation.RetrievedAt.Before(cutoff) {
			return true, nil
		}
	}

	return false, nil
}
