package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

const leasesCollection = "leases"

type leaseDoc struct {
	JobID      string    `firestore:"JobID"`
	AcquiredAt time.Time `firestore:"AcquiredAt"`
}

type leaseRepository struct {
	client *firestore.Client
	prefix string
}

func newLeaseRepository(client *firestore.Client, prefix string) *leaseRepository {
	return &leaseRepository{client: client, prefix: prefix}
}

func (r *leaseRepository) docRef(slug types.CompanySlug) *firestore.DocumentRef {
	return r.client.Collection(r.prefix + leasesCollection).Doc(string(slug))
}

func (r *leaseRepository) Acquire(ctx context.Context, slug types.CompanySlug, jobID types.JobID) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.docRef(slug)
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read lease", goerr.V("slug", slug))
		}

		if err == nil {
			var held leaseDoc
			if err := doc.DataTo(&held); err != nil {
				return goerr.Wrap(err, "failed to unmarshal lease", goerr.V("slug", slug))
			}
			if held.JobID == string(jobID) {
				return nil // already held by this job
			}
			return goerr.Wrap(ErrSlugBusy, "lease held by another job",
				goerr.V("slug", slug),
				goerr.V("holder", held.JobID),
			)
		}

		return tx.Set(ref, &leaseDoc{
			JobID:      string(jobID),
			AcquiredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *leaseRepository) Release(ctx context.Context, slug types.CompanySlug, jobID types.JobID) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := r.docRef(slug)
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return nil // unheld, nothing to release
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read lease", goerr.V("slug", slug))
		}

		var held leaseDoc
		if err := doc.DataTo(&held); err != nil {
			return goerr.Wrap(err, "failed to unmarshal lease", goerr.V("slug", slug))
		}
		if held.JobID != string(jobID) {
			return goerr.New("lease held by another job",
				goerr.V("slug", slug),
				goerr.V("holder", held.JobID),
				goerr.V("releaser", jobID),
			)
		}

		return tx.Delete(ref)
	})
}
