package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

const jobsCollection = "jobs"

// jobDoc is the Firestore document representation of model.Job
type jobDoc struct {
	ID               string     `firestore:"ID"`
	CompanyName      string     `firestore:"CompanyName"`
	CompanySlug      string     `firestore:"CompanySlug"`
	CompanySite      string     `firestore:"CompanySite"`
	JurisdictionHint string     `firestore:"JurisdictionHint"`
	ReportLanguage   string     `firestore:"ReportLanguage"`
	TimeWindowMonths int        `firestore:"TimeWindowMonths"`
	PlanTier         string     `firestore:"PlanTier"`
	AddOns           []string   `firestore:"AddOns"`
	Status           string     `firestore:"Status"`
	Result           *resultDoc `firestore:"Result,omitempty"`
	ErrorDetail      string     `firestore:"ErrorDetail"`
	CreatedAt        time.Time  `firestore:"CreatedAt"`
	UpdatedAt        time.Time  `firestore:"UpdatedAt"`
}

type resultDoc struct {
	Report          string   `firestore:"Report"`
	DocumentVersion string   `firestore:"DocumentVersion"`
	UnresolvedGaps  []string `firestore:"UnresolvedGaps"`
}

func toJobDoc(j *model.Job) *jobDoc {
	doc := &jobDoc{
		ID:               string(j.ID),
		CompanyName:      j.CompanyName,
		CompanySlug:      string(j.CompanySlug),
		CompanySite:      j.CompanySite,
		JurisdictionHint: j.JurisdictionHint,
		ReportLanguage:   j.ReportLanguage,
		TimeWindowMonths: j.TimeWindow.Months(),
		PlanTier:         string(j.PlanTier),
		AddOns:           j.AddOns,
		Status:           string(j.Status),
		ErrorDetail:      j.ErrorDetail,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
	if j.Result != nil {
		doc.Result = &resultDoc{
			Report:          j.Result.Report,
			DocumentVersion: string(j.Result.DocumentVersion),
			UnresolvedGaps:  j.Result.UnresolvedGaps,
		}
	}
	return doc
}

func fromJobDoc(d *jobDoc) *model.Job {
	j := &model.Job{
		ID:               types.JobID(d.ID),
		CompanyName:      d.CompanyName,
		CompanySlug:      types.CompanySlug(d.CompanySlug),
		CompanySite:      d.CompanySite,
		JurisdictionHint: d.JurisdictionHint,
		ReportLanguage:   d.ReportLanguage,
		TimeWindow:       types.TimeWindow(d.TimeWindowMonths),
		PlanTier:         types.PlanTier(d.PlanTier),
		AddOns:           d.AddOns,
		Status:           types.JobStatus(d.Status),
		ErrorDetail:      d.ErrorDetail,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.Result != nil {
		j.Result = &model.JobResult{
			Report:          d.Result.Report,
			DocumentVersion: types.VersionKey(d.Result.DocumentVersion),
			UnresolvedGaps:  d.Result.UnresolvedGaps,
		}
	}
	return j
}

type jobRepository struct {
	client *firestore.Client
	prefix string
}

func newJobRepository(client *firestore.Client, prefix string) *jobRepository {
	return &jobRepository{client: client, prefix: prefix}
}

func (r *jobRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.prefix + jobsCollection)
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	now := time.Now().UTC()
	created := job.Clone()
	if created.ID == "" {
		created.ID = types.NewJobID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toJobDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create job", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get job", goerr.V("id", id))
	}

	var d jobDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal job", goerr.V("id", id))
	}

	return fromJobDoc(&d), nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	docRef := r.collection().Doc(string(job.ID))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "job not found", goerr.V("id", job.ID))
		}
		return goerr.Wrap(err, "failed to check job", goerr.V("id", job.ID))
	}

	updated := job.Clone()
	updated.UpdatedAt = time.Now().UTC()
	if _, err := docRef.Set(ctx, toJobDoc(updated)); err != nil {
		return goerr.Wrap(err, "failed to update job", goerr.V("id", job.ID))
	}

	return nil
}

func (r *jobRepository) ListByStatus(ctx context.Context, st types.JobStatus) ([]*model.Job, error) {
	iter := r.collection().
		Where("Status", "==", string(st)).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	jobs := make([]*model.Job, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate jobs", goerr.V("status", st))
		}

		var d jobDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal job")
		}
		jobs = append(jobs, fromJobDoc(&d))
	}

	return jobs, nil
}
