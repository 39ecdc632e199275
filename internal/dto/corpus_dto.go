package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCorpusDocumentRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	JobText     string `json:"job_text" validate:"required"`
	LetterText  string `json:"letter_text" validate:"required"`
	Language    string `json:"language,omitempty"`
}

type CorpusDocumentResponse struct {
	Id          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Language    string    `json:"language,omitempty"`
	Embedded    bool      `json:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
}

type CorpusSearchResultResponse struct {
	CompanyName string  `json:"company_name"`
	LetterText  string  `json:"letter_text"`
	Score       float64 `json:"score"`
}

type CorpusCountResponse struct {
	Count int64 `json:"count"`
}

// EmbedCorpusDocumentMessage rides the embedding queue from document creation
// to the consumer that computes the vector.
type EmbedCorpusDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
