package memory

import (
	"context"
	"sync"
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/model"
)

type ledgerRepository struct {
	mu     sync.Mutex
	events []*model.CurationEvent
}

func newLedgerRepository() *ledgerRepository {
	return &ledgerRepository{}
}

func (r *ledgerRepository) Append(ctx context.Context, event *model.CurationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	if copied.Timestamp.IsZero() {
		copied.Timestamp = time.Now().UTC()
	}
	r.events = append(r.events, &copied)
	return nil
}

func (r *ledgerRepository) ListSince(ctx context.Context, since time.Time) ([]*model.CurationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.CurationEvent
	for _, event := range r.events {
		if event.Timestamp.Before(since) {
			continue
		}
		copied := *event
		result = append(result, &copied)
	}

	return result, nil
}
