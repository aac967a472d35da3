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

const fragmentsCollection = "fragments"

// fragmentDoc is the Firestore document representation of model.Fragment.
// Embedding is stored as firestore.Vector32 so that FindNearest vector
// search works.
type fragmentDoc struct {
	ID          string             `firestore:"ID"`
	Slug        string             `firestore:"Slug"`
	Topic       string             `firestore:"Topic"`
	SourceID    string             `firestore:"SourceID"`
	SourceURL   string             `firestore:"SourceURL"`
	RetrievedAt time.Time          `firestore:"RetrievedAt"`
	RawText     string             `firestore:"RawText"`
	Summary     string             `firestore:"Summary"`
	Embedding   firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt   time.Time          `firestore:"CreatedAt"`
}

func toFragmentDoc(f *model.Fragment) *fragmentDoc {
	doc := &fragmentDoc{
		ID:          string(f.ID),
		Slug:        string(f.Slug),
		Topic:       f.Topic,
		SourceID:    f.SourceID,
		SourceURL:   f.SourceURL,
		RetrievedAt: f.RetrievedAt,
		RawText:     f.RawText,
		Summary:     f.Summary,
		CreatedAt:   f.CreatedAt,
	}
	if len(f.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(f.Embedding)
	}
	return doc
}

func fromFragmentDoc(d *fragmentDoc) *model.Fragment {
	f := &model.Fragment{
		ID:          types.FragmentID(d.ID),
		Slug:        types.CompanySlug(d.Slug),
		Topic:       d.Topic,
		SourceID:    d.SourceID,
		SourceURL:   d.SourceURL,
		RetrievedAt: d.RetrievedAt,
		RawText:     d.RawText,
		Summary:     d.Summary,
		CreatedAt:   d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		f.Embedding = []float32(d.Embedding)
	}
	return f
}

func docToFragment(doc *firestore.DocumentSnapshot) (*model.Fragment, error) {
	var d fragmentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromFragmentDoc(&d), nil
}

type fragmentRepository struct {
	client *firestore.Client
	prefix string
}

func newFragmentRepository(client *firestore.Client, prefix string) *fragmentRepository {
	return &fragmentRepository{client: client, prefix: prefix}
}

func (r *fragmentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.prefix + fragmentsCollection)
}

func (r *fragmentRepository) Create(ctx context.Context, fragment *model.Fragment) (*model.Fragment, error) {
	created := fragment.Clone()
	if created.ID == "" {
		created.ID = types.NewFragmentID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toFragmentDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create fragment", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *fragmentRepository) Get(ctx context.Context, id types.FragmentID) (*model.Fragment, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "fragment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get fragment", goerr.V("id", id))
	}

	f, err := docToFragment(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal fragment", goerr.V("id", id))
	}

	return f, nil
}

func (r *fragmentRepository) ListByTopic(ctx context.Context, slug types.CompanySlug, topic string) ([]*model.Fragment, error) {
	iter := r.collection().
		Where("Slug", "==", string(slug)).
		Where("Topic", "==", topic).
		OrderBy("RetrievedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectFragments(iter)
}

func (r *fragmentRepository) ListSince(ctx context.Context, slug types.CompanySlug, topic string, since time.Time) ([]*model.Fragment, error) {
	iter := r.collection().
		Where("Slug", "==", string(slug)).
		Where("Topic", "==", topic).
		Where("RetrievedAt", ">=", since).
		OrderBy("RetrievedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectFragments(iter)
}

func (r *fragmentRepository) FindNearest(ctx context.Context, slug types.CompanySlug, topic string, embedding []float32, limit int) ([]*model.Fragment, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := r.collection().
		Where("Slug", "==", string(slug)).
		Where("Topic", "==", topic).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := query.Documents(ctx)
	defer iter.Stop()

	return collectFragments(iter)
}

func (r *fragmentRepository) PruneOld(ctx context.Context, slug types.CompanySlug, keep int) (int, error) {
	if keep < 0 {
		return 0, goerr.New("keep must not be negative", goerr.V("keep", keep))
	}

	iter := r.collection().
		Where("Slug", "==", string(slug)).
		OrderBy("RetrievedAt", firestore.Desc).
		Offset(keep).
		Documents(ctx)
	defer iter.Stop()

	removed := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, goerr.Wrap(err, "failed to iterate fragments", goerr.V("slug", slug))
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return removed, goerr.Wrap(err, "failed to delete fragment", goerr.V("id", doc.Ref.ID))
		}
		removed++
	}

	return removed, nil
}

func collectFragments(iter *firestore.DocumentIterator) ([]*model.Fragment, error) {
	fragments := make([]*model.Fragment, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate fragments")
		}

		f, err := docToFragment(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fragment")
		}
		fragments = append(fragments, f)
	}

	return fragments, nil
}
