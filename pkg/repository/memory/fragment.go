package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

type fragmentRepository struct {
	mu        sync.RWMutex
	fragments map[types.FragmentID]*model.Fragment
}

func newFragmentRepository() *fragmentRepository {
	return &fragmentRepository{
		fragments: make(map[types.FragmentID]*model.Fragment),
	}
}

func (r *fragmentRepository) Create(ctx context.Context, fragment *model.Fragment) (*model.Fragment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := fragment.Clone()
	if created.ID == "" {
		created.ID = types.NewFragmentID()
	}
	created.CreatedAt = time.Now().UTC()

	r.fragments[created.ID] = created
	return created.Clone(), nil
}

func (r *fragmentRepository) Get(ctx context.Context, id types.FragmentID) (*model.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fragment, exists := r.fragments[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "fragment not found", goerr.V("id", id))
	}

	return fragment.Clone(), nil
}

func (r *fragmentRepository) ListByTopic(ctx context.Context, slug types.CompanySlug, topic string) ([]*model.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Fragment
	for _, f := range r.fragments {
		if f.Slug == slug && f.Topic == topic {
			result = append(result, f.Clone())
		}
	}

	sortByRecency(result)
	return result, nil
}

func (r *fragmentRepository) ListSince(ctx context.Context, slug types.CompanySlug, topic string, since time.Time) ([]*model.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Fragment
	for _, f := range r.fragments {
		if f.Slug == slug && f.Topic == topic && !f.RetrievedAt.Before(since) {
			result = append(result, f.Clone())
		}
	}

	sortByRecency(result)
	return result, nil
}

func (r *fragmentRepository) FindNearest(ctx context.Context, slug types.CompanySlug, topic string, embedding []float32, limit int) ([]*model.Fragment, error) {
	if limit <= 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		fragment *model.Fragment
		score    float64
	}

	var candidates []scored
	for _, f := range r.fragments {
		if f.Slug != slug || f.Topic != topic || len(f.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{
			fragment: f.Clone(),
			score:    model.CosineSimilarity(embedding, f.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]*model.Fragment, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.fragment)
	}

	return result, nil
}

func (r *fragmentRepository) PruneOld(ctx context.Context, slug types.CompanySlug, keep int) (int, error) {
	if keep < 0 {
		return 0, goerr.New("keep must not be negative", goerr.V("keep", keep))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var owned []*model.Fragment
	for _, f := range r.fragments {
		if f.Slug == slug {
			owned = append(owned, f)
		}
	}
	if len(owned) <= keep {
		return 0, nil
	}

	sortByRecency(owned)

	removed := 0
	for _, f := range owned[keep:] {
		delete(r.fragments, f.ID)
		removed++
	}

	return removed, nil
}

func sortByRecency(fragments []*model.Fragment) {
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].RetrievedAt.After(fragments[j].RetrievedAt)
	})
}
