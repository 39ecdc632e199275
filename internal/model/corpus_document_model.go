package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusDocument struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyName    string          `gorm:"type:text;index"`
	JobText        string          `gorm:"type:text"`
	LetterText     string          `gorm:"type:text"`
	Language       string          `gorm:"type:varchar(16);default:''"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // embedding providers emit 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (CorpusDocument) TableName() string {
	return "corpus_documents"
}
