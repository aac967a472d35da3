package interfaces

import (
	"context"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// DocumentRepository owns knowledge document identity and its version
// archive. Replace is the only mutator of the current document: it archives
// the previous current version (if any) under its last-modified timestamp
// before installing the new one, so the archive reflects every version that
// was ever current.
type DocumentRepository interface {
	// GetCurrent retrieves the current document for a slug
	GetCurrent(ctx context.Context, slug types.CompanySlug) (*model.Document, error)

	// Replace archives the existing current document and installs doc as the
	// new current version. Replacing with identical content still archives.
	Replace(ctx context.Context, slug types.CompanySlug, doc *model.Document) error

	// ListArchiveKeys returns archive version keys, newest first
	ListArchiveKeys(ctx context.Context, slug types.CompanySlug) ([]types.VersionKey, error)

	// GetArchived retrieves one archived version by its exact key
	GetArchived(ctx context.Context, slug types.CompanySlug, key types.VersionKey) (*model.Document, error)

	// ListSlugs returns all slugs with a current document
	ListSlugs(ctx context.Context) ([]types.CompanySlug, error)

	// Prune retains the keep most recent archive entries and removes older
	// ones. The current document is never removed. Returns the removed count.
	Prune(ctx context.Context, slug types.CompanySlug, keep int) (int, error)
}
