package interfaces

import (
	"context"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// JobRepository defines the interface for investigation job persistence
type JobRepository interface {
	// Create stores a new job
	Create(ctx context.Context, job *model.Job) (*model.Job, error)

	// Get retrieves a job by ID
	Get(ctx context.Context, id types.JobID) (*model.Job, error)

	// Update replaces the stored job state. Callers must not update a job
	// that has already reached a terminal status.
	Update(ctx context.Context, job *model.Job) error

	// ListByStatus retrieves jobs with the given status, newest first
	ListByStatus(ctx context.Context, status types.JobStatus) ([]*model.Job, error)
}
