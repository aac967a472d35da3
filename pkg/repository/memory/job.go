package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

type jobRepository struct {
	mu   sync.RWMutex
	jobs map[types.JobID]*model.Job
}

func newJobRepository() *jobRepository {
	return &jobRepository{
		jobs: make(map[types.JobID]*model.Job),
	}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := job.Clone()
	if created.ID == "" {
		created.ID = types.NewJobID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.jobs[created.ID] = created
	return created.Clone(), nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", id))
	}

	return job.Clone(), nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; !exists {
		return goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", job.ID))
	}

	updated := job.Clone()
	updated.UpdatedAt = time.Now().UTC()
	r.jobs[job.ID] = updated
	return nil
}

func (r *jobRepository) ListByStatus(ctx context.Context, status types.JobStatus) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Job
	for _, job := range r.jobs {
		if job.Status == status {
			result = append(result, job.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
