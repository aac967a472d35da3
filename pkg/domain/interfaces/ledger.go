package interfaces

import (
	"context"
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/model"
)

// LedgerRepository is the append-only record of curation events. Appends
// must be safe under concurrency; at-least-once semantics are acceptable
// and duplicates are intentionally not deduplicated.
type LedgerRepository interface {
	// Append records one curation event
	Append(ctx context.Context, event *model.CurationEvent) error

	// ListSince returns events with a timestamp at or after since
	ListSince(ctx context.Context, since time.Time) ([]*model.CurationEvent, error)
}
