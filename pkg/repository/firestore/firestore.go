package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
)

type Firestore struct {
	client   *firestore.Client
	job      *jobRepository
	document *documentRepository
	fragment *fragmentRepository
	ledger   *ledgerRepository
	lease    *leaseRepository
}

var _ interfaces.Repository = &Firestore{}

// Option configures the Firestore repository
type Option func(*options)

type options struct {
	prefix string
}

// WithCollectionPrefix prefixes every collection name, used by tests to
// isolate runs against a shared database.
func WithCollectionPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	return &Firestore{
		client:   client,
		job:      newJobRepository(client, o.prefix),
		document: newDocumentRepository(client, o.prefix),
		fragment: newFragmentRepository(client, o.prefix),
		ledger:   newLedgerRepository(client, o.prefix),
		lease:    newLeaseRepository(client, o.prefix),
	}, nil
}

func (f *Firestore) Job() interfaces.JobRepository {
	return f.job
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Fragment() interfaces.FragmentRepository {
	return f.fragment
}

func (f *Firestore) Ledger() interfaces.LedgerRepository {
	return f.ledger
}

func (f *Firestore) Lease() interfaces.LeaseRepository {
	return f.lease
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
