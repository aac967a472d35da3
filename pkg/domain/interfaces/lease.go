package interfaces

import (
	"context"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// LeaseRepository provides document-level mutual exclusion keyed by company
// slug. At most one job may hold the lease for a slug; a second acquisition
// fails fast with a busy condition so concurrent runs never interleave
// document writes.
type LeaseRepository interface {
	// Acquire takes the lease for a slug on behalf of a job
	Acquire(ctx context.Context, slug types.CompanySlug, jobID types.JobID) error

	// Release frees the lease. Releasing a lease held by another job is an
	// error; releasing an unheld lease is a no-op.
	Release(ctx context.Context, slug types.CompanySlug, jobID types.JobID) error
}
