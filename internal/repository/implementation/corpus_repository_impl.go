package implementation

import (
	"context"
	"errors"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/mapper"
	"ai-coverletter-be/internal/model"
	"ai-coverletter-be/internal/repository/contract"
	"ai-coverletter-be/internal/repository/scope"
	"ai-coverletter-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CorpusDocumentMapper
}

func NewCorpusRepository(db *gorm.DB) contract.CorpusRepository {
	return &CorpusRepositoryImpl{
		db:     db,
		mapper: mapper.NewCorpusDocumentMapper(),
	}
}

func (r *CorpusRepositoryImpl) Create(ctx context.Context, doc *entity.CorpusDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *CorpusRepositoryImpl) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error {
	return r.db.WithContext(ctx).
		Model(&model.CorpusDocument{}).
		Where("id = ?", id).
		Update("embedding_value", pgvector.NewVector(vector)).Error
}

// QueryNearest ranks documents by cosine similarity against the query vector.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding_value <=> query_vector) = cosine_similarity.
func (r *CorpusRepositoryImpl) QueryNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredCorpusDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.CorpusDocument
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("corpus_documents").
		Select("corpus_documents.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredCorpusDocument, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredCorpusDocument{
			Document:   r.mapper.ToEntity(&res.CorpusDocument),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *CorpusRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.CorpusDocument, error) {
	var m model.CorpusDocument
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CorpusRepositoryImpl) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.CorpusDocument, error) {
	var models []*model.CorpusDocument
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CorpusRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CorpusRepositoryImpl) List(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusDocument, error) {
	var models []*model.CorpusDocument
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CorpusRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CorpusDocument{}).Count(&count).Error
	return count, err
}

func (r *CorpusRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CorpusDocument{}, id).Error
}
