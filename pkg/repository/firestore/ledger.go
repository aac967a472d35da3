package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/duedil-lab/diligent/pkg/domain/model"
)

const curationEventsCollection = "curation_events"

type ledgerRepository struct {
	client *firestore.Client
	prefix string
}

func newLedgerRepository(client *firestore.Client, prefix string) *ledgerRepository {
	return &ledgerRepository{client: client, prefix: prefix}
}

func (r *ledgerRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.prefix + curationEventsCollection)
}

func (r *ledgerRepository) Append(ctx context.Context, event *model.CurationEvent) error {
	record := *event
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if _, _, err := r.collection().Add(ctx, &record); err != nil {
		return goerr.Wrap(err, "failed to append curation event", goerr.V("slug", record.Slug))
	}

	return nil
}

func (r *ledgerRepository) ListSince(ctx context.Context, since time.Time) ([]*model.CurationEvent, error) {
	iter := r.collection().
		Where("Timestamp", ">=", since).
		OrderBy("Timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	events := make([]*model.CurationEvent, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate curation events")
		}

		var event model.CurationEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal curation event")
		}
		events = append(events, &event)
	}

	return events, nil
}
