package mapper

import (
	"time"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusDocumentMapper struct{}

func NewCorpusDocumentMapper() *CorpusDocumentMapper {
	return &CorpusDocumentMapper{}
}

func (m *CorpusDocumentMapper) ToEntity(e *model.CorpusDocument) *entity.CorpusDocument {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.CorpusDocument{
		Id:          e.Id,
		CompanyName: e.CompanyName,
		JobText:     e.JobText,
		LetterText:  e.LetterText,
		Language:    e.Language,
		Embedding:   e.EmbeddingValue.Slice(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *CorpusDocumentMapper) ToModel(e *entity.CorpusDocument) *model.CorpusDocument {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.CorpusDocument{
		Id:             e.Id,
		CompanyName:    e.CompanyName,
		JobText:        e.JobText,
		LetterText:     e.LetterText,
		Language:       e.Language,
		EmbeddingValue: pgvector.NewVector(e.Embedding),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *CorpusDocumentMapper) ToEntities(docs []*model.CorpusDocument) []*entity.CorpusDocument {
	entities := make([]*entity.CorpusDocument, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
