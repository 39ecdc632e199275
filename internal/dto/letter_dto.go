package dto

import (
	"time"

	"ai-coverletter-be/internal/entity"
)

type ExtractRequest struct {
	JobText           string   `json:"job_text" validate:"required"`
	CvText            string   `json:"cv_text" validate:"required"`
	StyleInstructions string   `json:"style_instructions,omitempty"`
	Vendors           []string `json:"vendors,omitempty" validate:"max=5"`
}

type BackgroundRequest struct {
	Vendors []string `json:"vendors,omitempty" validate:"max=5"`
}

type DraftRequest struct {
	Vendors []string `json:"vendors,omitempty" validate:"max=5"`
	// Override lets the user draft without a company briefing.
	Override bool `json:"override,omitempty"`
}

type RefineRequest struct {
	Vendors []string `json:"vendors,omitempty" validate:"max=5"`
	// Fancy applies the acrostic reformatting after the rewrite.
	Fancy bool `json:"fancy,omitempty"`
}

// VendorResultDTO is one vendor's outcome of a phase call. Error is set when
// the vendor failed; siblings still report their results.
type VendorResultDTO struct {
	Vendor        string              `json:"vendor"`
	Metadata      *entity.JobMetadata `json:"metadata,omitempty"`
	CompanyReport string              `json:"company_report,omitempty"`
	DraftLetter   string              `json:"draft_letter,omitempty"`
	FinalLetter   string              `json:"final_letter,omitempty"`
	Feedback      map[string]string   `json:"feedback,omitempty"`
	Cost          float64             `json:"cost"`
	Error         string              `json:"error,omitempty"`
}

type PhaseResponse struct {
	SessionId string            `json:"session_id"`
	Phase     string            `json:"phase"`
	Results   []VendorResultDTO `json:"results"`
}

type ExtractResponse struct {
	SessionId string            `json:"session_id"`
	Results   []VendorResultDTO `json:"results"`
}

type SessionResponse struct {
	Id                string                             `json:"id"`
	JobText           string                             `json:"job_text"`
	CvText            string                             `json:"cv_text"`
	StyleInstructions string                             `json:"style_instructions,omitempty"`
	SearchResult      []entity.CandidateRef              `json:"search_result,omitempty"`
	Metadata          map[string]entity.JobMetadata      `json:"metadata,omitempty"`
	Vendors           map[string]entity.VendorPhaseState `json:"vendors,omitempty"`
	CreatedAt         time.Time                          `json:"created_at"`
	UpdatedAt         time.Time                          `json:"updated_at"`
}
