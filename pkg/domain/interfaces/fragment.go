package interfaces

import (
	"context"
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// FragmentRepository defines the interface for knowledge fragment
// persistence and similarity lookup
type FragmentRepository interface {
	// Create stores a curated fragment
	Create(ctx context.Context, fragment *model.Fragment) (*model.Fragment, error)

	// Get retrieves a fragment by ID
	Get(ctx context.Context, id types.FragmentID) (*model.Fragment, error)

	// ListByTopic retrieves fragments for a company topic, newest first
	ListByTopic(ctx context.Context, slug types.CompanySlug, topic string) ([]*model.Fragment, error)

	// ListSince retrieves fragments for a company topic retrieved after the
	// given time, newest first
	ListSince(ctx context.Context, slug types.CompanySlug, topic string, since time.Time) ([]*model.Fragment, error)

	// FindNearest returns up to limit fragments for a company topic ordered
	// by embedding similarity to the query vector
	FindNearest(ctx context.Context, slug types.CompanySlug, topic string, embedding []float32, limit int) ([]*model.Fragment, error)

	// PruneOld retains the keep most recent fragments for a slug and removes
	// older ones. Returns the removed count.
	PruneOld(ctx context.Context, slug types.CompanySlug, keep int) (int, error)
}
