package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// PlaybookUseCase maintains the knowledge document store: listing companies,
// inspecting versions and pruning old archives and raw fragments.
type PlaybookUseCase struct {
	repo   interfaces.Repository
	policy *model.Policy
}

// NewPlaybookUseCase builds a standalone maintenance use case. CLI commands
// use this directly since they need no search or curation wiring.
func NewPlaybookUseCase(repo interfaces.Repository, policy *model.Policy) *PlaybookUseCase {
	return &PlaybookUseCase{repo: repo, policy: policy}
}

// CompanyEntry summarizes one company's knowledge store footprint
type CompanyEntry struct {
	Slug         types.CompanySlug `json:"slug"`
	Topics       []string          `json:"topics"`
	ArchiveCount int               `json:"archive_count"`
}

// List enumerates companies with a current document
func (uc *PlaybookUseCase) List(ctx context.Context) ([]CompanyEntry, error) {
	slugs, err := uc.repo.Document().ListSlugs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list companies")
	}

	entries := make([]CompanyEntry, 0, len(slugs))
	for _, slug := range slugs {
		doc, err := uc.repo.Document().GetCurrent(ctx, slug)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load document", goerr.V("slug", slug))
		}

		keys, err := uc.repo.Document().ListArchiveKeys(ctx, slug)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list archive", goerr.V("slug", slug))
		}

		entries = append(entries, CompanyEntry{
			Slug:         slug,
			Topics:       doc.Topics(),
			ArchiveCount: len(keys),
		})
	}

	return entries, nil
}

// Show retrieves the current document, or an archived version when key is
// non-empty.
func (uc *PlaybookUseCase) Show(ctx context.Context, slug types.CompanySlug, key types.VersionKey) (*model.Document, error) {
	if key != "" {
		doc, err := uc.repo.Document().GetArchived(ctx, slug, key)
		if err != nil {
			if isRepoNotFound(err) {
				return nil, goerr.Wrap(ErrVersionNotFound, "no such version",
					goerr.V("slug", slug), goerr.V("version", key))
			}
			return nil, goerr.Wrap(err, "failed to load archived document", goerr.V("slug", slug))
		}
		return doc, nil
	}

	doc, err := uc.repo.Document().GetCurrent(ctx, slug)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrDocumentNotFound, "no document for company", goerr.V("slug", slug))
		}
		return nil, goerr.Wrap(err, "failed to load document", goerr.V("slug", slug))
	}

	return doc, nil
}

// Versions lists archive keys for a company, newest first
func (uc *PlaybookUseCase) Versions(ctx context.Context, slug types.CompanySlug) ([]types.VersionKey, error) {
	keys, err := uc.repo.Document().ListArchiveKeys(ctx, slug)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list archive", goerr.V("slug", slug))
	}
	return keys, nil
}

// Prune removes archived versions beyond the keep newest for one company.
// The current document and raw fragments beyond the same keep count are
// handled together so storage shrinks in one pass.
func (uc *PlaybookUseCase) Prune(ctx context.Context, slug types.CompanySlug, keep int) (int, error) {
	if keep < 0 {
		return 0, goerr.Wrap(ErrInvalidRequest, "keep must not be negative", goerr.V("keep", keep))
	}

	removed, err := uc.repo.Document().Prune(ctx, slug, keep)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prune archive", goerr.V("slug", slug))
	}

	prunedFragments, err := uc.repo.Fragment().PruneOld(ctx, slug, keep*fragmentsPerVersion)
	if err != nil {
		return removed, goerr.Wrap(err, "failed to prune fragments", goerr.V("slug", slug))
	}

	logging.From(ctx).Info("pruned company knowledge",
		"slug", slug, "archives_removed", removed, "fragments_removed", prunedFragments)

	return removed, nil
}

// fragmentsPerVersion scales the raw fragment retention to the archive keep
// count. One document version typically folds in several fragments.
const fragmentsPerVersion = 20

// PruneAll prunes every company's archive to keep versions and reports the
// removed count per company.
func (uc *PlaybookUseCase) PruneAll(ctx context.Context, keep int) (map[types.CompanySlug]int, error) {
	slugs, err := uc.repo.Document().ListSlugs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list companies")
	}

	removed := make(map[types.CompanySlug]int, len(slugs))
	for _, slug := range slugs {
		count, err := uc.Prune(ctx, slug, keep)
		if err != nil {
			return removed, err
		}
		removed[slug] = count
	}

	return removed, nil
}
