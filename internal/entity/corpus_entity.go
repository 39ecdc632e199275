package entity

import (
	"time"

	"github.com/google/uuid"
)

// CorpusDocument is one reference cover letter in the retrieval corpus:
// the job posting it answered and the letter that was sent.
type CorpusDocument struct {
	Id          uuid.UUID
	CompanyName string
	JobText     string
	LetterText  string
	Language    string
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// ScoredCorpusDocument pairs a corpus document with its query similarity.
type ScoredCorpusDocument struct {
	Document   *CorpusDocument
	Similarity float64
}
