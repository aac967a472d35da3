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

type documentRepository struct {
	mu       sync.RWMutex
	current  map[types.CompanySlug]*model.Document
	archives map[types.CompanySlug]map[types.VersionKey]*model.Document
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		current:  make(map[types.CompanySlug]*model.Document),
		archives: make(map[types.CompanySlug]map[types.VersionKey]*model.Document),
	}
}

func (r *documentRepository) GetCurrent(ctx context.Context, slug types.CompanySlug) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.current[slug]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("slug", slug))
	}

	return doc.Clone(), nil
}

func (r *documentRepository) Replace(ctx context.Context, slug types.CompanySlug, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	if prev, exists := r.current[slug]; exists {
		archive, ok := r.archives[slug]
		if !ok {
			archive = make(map[types.VersionKey]*model.Document)
			r.archives[slug] = archive
		}

		at := prev.UpdatedAt
		if at.IsZero() {
			at = now
		}
		key := types.NewVersionKey(at)
		// Keys must stay unique under rapid replaces of identical content
		for _, taken := archive[key]; taken; _, taken = archive[key] {
			at = at.Add(time.Nanosecond)
			key = types.NewVersionKey(at)
		}
		archive[key] = prev
	}

	installed := doc.Clone()
	installed.Slug = slug
	installed.UpdatedAt = now
	r.current[slug] = installed
	return nil
}

func (r *documentRepository) ListArchiveKeys(ctx context.Context, slug types.CompanySlug) ([]types.VersionKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.archiveKeysDesc(slug), nil
}

func (r *documentRepository) archiveKeysDesc(slug types.CompanySlug) []types.VersionKey {
	keys := make([]types.VersionKey, 0, len(r.archives[slug]))
	for key := range r.archives[slug] {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] > keys[j]
	})
	return keys
}

func (r *documentRepository) GetArchived(ctx context.Context, slug types.CompanySlug, key types.VersionKey) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.archives[slug][key]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "archived document not found",
			goerr.V("slug", slug), goerr.V("key", key))
	}

	return doc.Clone(), nil
}

func (r *documentRepository) ListSlugs(ctx context.Context) ([]types.CompanySlug, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]types.CompanySlug, 0, len(r.current))
	for slug := range r.current {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		return slugs[i] < slugs[j]
	})

	return slugs, nil
}

func (r *documentRepository) Prune(ctx context.Context, slug types.CompanySlug, keep int) (int, error) {
	if keep < 0 {
		return 0, goerr.New("keep must not be negative", goerr.V("keep", keep))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.archiveKeysDesc(slug)
	if len(keys) <= keep {
		return 0, nil
	}

	removed := 0
	for _, key := range keys[keep:] {
		delete(r.archives[slug], key)
		removed++
	}

	return removed, nil
}
