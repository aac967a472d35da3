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

const (
	companiesCollection = "companies"
	archiveCollection   = "archive"
)

// documentDoc is the Firestore representation of model.Document. Sections
// are stored as a slice so topic names are unrestricted.
type documentDoc struct {
	Slug      string       `firestore:"Slug"`
	Sections  []sectionDoc `firestore:"Sections"`
	UpdatedAt time.Time    `firestore:"UpdatedAt"`
}

type sectionDoc struct {
	Topic     string        `firestore:"Topic"`
	Text      string        `firestore:"Text"`
	Citations []citationDoc `firestore:"Citations"`
	UpdatedAt time.Time     `firestore:"UpdatedAt"`
}

type citationDoc struct {
	SourceID    string    `firestore:"SourceID"`
	SourceURL   string    `firestore:"SourceURL"`
	RetrievedAt time.Time `firestore:"RetrievedAt"`
	Confidence  string    `firestore:"Confidence"`
}

func toDocumentDoc(d *model.Document) *documentDoc {
	doc := &documentDoc{
		Slug:      string(d.Slug),
		UpdatedAt: d.UpdatedAt,
	}
	for _, topic := range d.Topics() {
		sec := d.Sections[topic]
		s := sectionDoc{
			Topic:     sec.Topic,
			Text:      sec.Text,
			UpdatedAt: sec.UpdatedAt,
		}
		for _, c := range sec.Citations {
			s.Citations = append(s.Citations, citationDoc{
				SourceID:    c.SourceID,
				SourceURL:   c.SourceURL,
				RetrievedAt: c.RetrievedAt,
				Confidence:  string(c.Confidence),
			})
		}
		doc.Sections = append(doc.Sections, s)
	}
	return doc
}

func fromDocumentDoc(d *documentDoc) *model.Document {
	doc := model.NewDocument(types.CompanySlug(d.Slug))
	doc.UpdatedAt = d.UpdatedAt
	for _, s := range d.Sections {
		sec := &model.Section{
			Topic:     s.Topic,
			Text:      s.Text,
			UpdatedAt: s.UpdatedAt,
		}
		for _, c := range s.Citations {
			sec.Citations = append(sec.Citations, model.Citation{
				SourceID:    c.SourceID,
				SourceURL:   c.SourceURL,
				RetrievedAt: c.RetrievedAt,
				Confidence:  model.Confidence(c.Confidence),
			})
		}
		doc.Sections[s.Topic] = sec
	}
	return doc
}

type documentRepository struct {
	client *firestore.Client
	prefix string
}

func newDocumentRepository(client *firestore.Client, prefix string) *documentRepository {
	return &documentRepository{client: client, prefix: prefix}
}

func (r *documentRepository) companyRef(slug types.CompanySlug) *firestore.DocumentRef {
	return r.client.Collection(r.prefix + companiesCollection).Doc(string(slug))
}

func (r *documentRepository) archiveRef(slug types.CompanySlug) *firestore.CollectionRef {
	return r.companyRef(slug).Collection(archiveCollection)
}

func (r *documentRepository) GetCurrent(ctx context.Context, slug types.CompanySlug) (*model.Document, error) {
	doc, err := r.companyRef(slug).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("slug", slug))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("slug", slug))
	}

	var d documentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("slug", slug))
	}

	return fromDocumentDoc(&d), nil
}

// Replace runs as a transaction so the archive copy and the current-document
// install never tear apart.
func (r *documentRepository) Replace(ctx context.Context, slug types.CompanySlug, doc *model.Document) error {
	now := time.Now().UTC()

	installed := doc.Clone()
	installed.Slug = slug
	installed.UpdatedAt = now

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		currentRef := r.companyRef(slug)
		snapshot, err := tx.Get(currentRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read current document")
		}

		if err == nil {
			var prev documentDoc
			if err := snapshot.DataTo(&prev); err != nil {
				return goerr.Wrap(err, "failed to unmarshal current document")
			}
			at := prev.UpdatedAt
			if at.IsZero() {
				at = now
			}
			key := types.NewVersionKey(at)
			archiveRef := r.archiveRef(slug).Doc(key.String())
			if err := tx.Set(archiveRef, &prev); err != nil {
				return goerr.Wrap(err, "failed to archive document", goerr.V("key", key))
			}
		}

		if err := tx.Set(currentRef, toDocumentDoc(installed)); err != nil {
			return goerr.Wrap(err, "failed to install document")
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to replace document", goerr.V("slug", slug))
	}

	return nil
}

func (r *documentRepository) ListArchiveKeys(ctx context.Context, slug types.CompanySlug) ([]types.VersionKey, error) {
	iter := r.archiveRef(slug).
		OrderBy(firestore.DocumentID, firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	keys := make([]types.VersionKey, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate archive", goerr.V("slug", slug))
		}
		keys = append(keys, types.VersionKey(doc.Ref.ID))
	}

	return keys, nil
}

func (r *documentRepository) GetArchived(ctx context.Context, slug types.CompanySlug, key types.VersionKey) (*model.Document, error) {
	doc, err := r.archiveRef(slug).Doc(key.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "archived document not found",
				goerr.V("slug", slug), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get archived document",
			goerr.V("slug", slug), goerr.V("key", key))
	}

	var d documentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal archived document", goerr.V("key", key))
	}

	return fromDocumentDoc(&d), nil
}

func (r *documentRepository) ListSlugs(ctx context.Context) ([]types.CompanySlug, error) {
	iter := r.client.Collection(r.prefix + companiesCollection).Documents(ctx)
	defer iter.Stop()

	slugs := make([]types.CompanySlug, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate companies")
		}
		slugs = append(slugs, types.CompanySlug(doc.Ref.ID))
	}

	return slugs, nil
}

func (r *documentRepository) Prune(ctx context.Context, slug types.CompanySlug, keep int) (int, error) {
	if keep < 0 {
		return 0, goerr.New("keep must not be negative", goerr.V("keep", keep))
	}

	keys, err := r.ListArchiveKeys(ctx, slug)
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}

	removed := 0
	for _, key := range keys[keep:] {
		if _, err := r.archiveRef(slug).Doc(key.String()).Delete(ctx); err != nil {
			return removed, goerr.Wrap(err, "failed to delete archived document",
				goerr.V("slug", slug), goerr.V("key", key))
		}
		removed++
	}

	return removed, nil
}
