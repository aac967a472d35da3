package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

type leaseRepository struct {
	mu     sync.Mutex
	leases map[types.CompanySlug]types.JobID
}

func newLeaseRepository() *leaseRepository {
	return &leaseRepository{
		leases: make(map[types.CompanySlug]types.JobID),
	}
}

func (r *leaseRepository) Acquire(ctx context.Context, slug types.CompanySlug, jobID types.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if holder, held := r.leases[slug]; held {
		if holder == jobID {
			return nil
		}
		return goerr.Wrap(ErrSlugBusy, "lease already held",
			goerr.V("slug", slug), goerr.V("holder", holder))
	}

	r.leases[slug] = jobID
	return nil
}

func (r *leaseRepository) Release(ctx context.Context, slug types.CompanySlug, jobID types.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	holder, held := r.leases[slug]
	if !held {
		return nil
	}
	if holder != jobID {
		return goerr.New("lease held by another job",
			goerr.V("slug", slug), goerr.V("holder", holder), goerr.V("releaser", jobID))
	}

	delete(r.leases, slug)
	return nil
}
