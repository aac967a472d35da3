package model

import (
	"math"
	"time"

	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// Fragment is one unit of raw evidence together with its curated summary.
// Fragments are immutable once stored; fragments that fail curation are
// discarded rather than persisted.
type Fragment struct {
	ID          types.FragmentID
	Slug        types.CompanySlug
	Topic       string
	SourceID    string
	SourceURL   string
	RetrievedAt time.Time
	RawText     string
	Summary     string
	Embedding   []float32
	CreatedAt   time.Time
}

// Citation derives the citation record carried by this fragment
func (f *Fragment) Citation(confidence Confidence) Citation {
	return Citation{
		SourceID:    f.SourceID,
		SourceURL:   f.SourceURL,
		RetrievedAt: f.RetrievedAt,
		Confidence:  confidence,
	}
}

// Clone returns a deep copy of the fragment
func (f *Fragment) Clone() *Fragment {
	copied := *f
	if f.Embedding != nil {
		copied.Embedding = make([]float32, len(f.Embedding))
		copy(copied.Embedding, f.Embedding)
	}
	return &copied
}

// CosineSimilarity computes the cosine similarity between two embedding
// vectors. Mismatched or empty vectors score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
