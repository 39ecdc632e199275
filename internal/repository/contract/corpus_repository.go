package contract

import (
	"context"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/repository/specification"

	"github.com/google/uuid"
)

// CorpusRepository is the document store plus vector index for reference
// letters. Upsert and QueryNearest are the external vector-index primitives;
// FindByIds hydrates candidate refs into full documents.
type CorpusRepository interface {
	Create(ctx context.Context, doc *entity.CorpusDocument) error

	// Upsert writes the document's embedding vector.
	Upsert(ctx context.Context, id uuid.UUID, vector []float32) error

	// QueryNearest returns the ids of the closest documents by cosine
	// similarity, best first.
	QueryNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredCorpusDocument, error)

	FindById(ctx context.Context, id uuid.UUID) (*entity.CorpusDocument, error)
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.CorpusDocument, error)

	// List returns documents newest first, filtered by the given specs.
	List(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusDocument, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
