package entity

import (
	"time"
)

// MetadataCommonKey is the shared-baseline key inside Session.Metadata.
// Vendor extraction results shadow it field by field; phase code never
// writes into it.
const MetadataCommonKey = "common"

// JobMetadata holds the fields extracted from a job posting.
type JobMetadata struct {
	CompanyName    string   `json:"company_name,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	Location       string   `json:"location,omitempty"`
	Language       string   `json:"language,omitempty"`
	Salary         string   `json:"salary,omitempty"`
	Requirements   []string `json:"requirements,omitempty"`
	PointOfContact string   `json:"point_of_contact,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (m JobMetadata) IsEmpty() bool {
	return m.CompanyName == "" && m.JobTitle == "" && m.Location == "" &&
		m.Language == "" && m.Salary == "" && len(m.Requirements) == 0 &&
		m.PointOfContact == ""
}

// CandidateRef is one nearest-neighbour hit from the letter corpus. Legacy
// refs carry the full document inline and bypass hydration.
type CandidateRef struct {
	Id          string  `json:"id"`
	Score       float64 `json:"score"`
	CompanyName string  `json:"company_name,omitempty"`
	JobText     string  `json:"job_text,omitempty"`
	LetterText  string  `json:"letter_text,omitempty"`
}

// Inline reports whether the ref embeds its full document.
func (r CandidateRef) Inline() bool {
	return r.JobText != "" || r.LetterText != ""
}

// ScoredDocument is a reranked corpus document feeding generation prompts.
type ScoredDocument struct {
	CompanyName string  `json:"company_name"`
	JobText     string  `json:"job_text"`
	LetterText  string  `json:"letter_text"`
	Score       float64 `json:"score"`
}

// VendorPhaseState is the per-(session, vendor) slice of the aggregate.
// Invariant: FinalLetter is only set once DraftLetter is non-empty.
type VendorPhaseState struct {
	TopDocs       []ScoredDocument  `json:"top_docs,omitempty"`
	CompanyReport string            `json:"company_report,omitempty"`
	DraftLetter   string            `json:"draft_letter,omitempty"`
	FinalLetter   string            `json:"final_letter,omitempty"`
	Feedback      map[string]string `json:"feedback,omitempty"`
	Cost          float64           `json:"cost"`
}

// Session is the aggregate for one in-progress letter-writing task.
type Session struct {
	Id                string
	JobText           string
	CvText            string
	StyleInstructions string
	SearchResult      []CandidateRef
	Metadata          map[string]JobMetadata
	Vendors           map[string]VendorPhaseState
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MetadataFor resolves the effective metadata for a vendor: each field reads
// the vendor's extraction first and falls back to the "common" baseline when
// the vendor value is empty.
func (s *Session) MetadataFor(vendor string) JobMetadata {
	common := s.Metadata[MetadataCommonKey]
	local, ok := s.Metadata[vendor]
	if !ok {
		return common
	}

	merged := local
	if merged.CompanyName == "" {
		merged.CompanyName = common.CompanyName
	}
	if merged.JobTitle == "" {
		merged.JobTitle = common.JobTitle
	}
	if merged.Location == "" {
		merged.Location = common.Location
	}
	if merged.Language == "" {
		merged.Language = common.Language
	}
	if merged.Salary == "" {
		merged.Salary = common.Salary
	}
	if len(merged.Requirements) == 0 {
		merged.Requirements = common.Requirements
	}
	if merged.PointOfContact == "" {
		merged.PointOfContact = common.PointOfContact
	}
	return merged
}

// VendorState returns the vendor's slice, zero-valued when absent.
func (s *Session) VendorState(vendor string) VendorPhaseState {
	if s.Vendors == nil {
		return VendorPhaseState{}
	}
	return s.Vendors[vendor]
}

// Clone returns a deep copy, so in-memory stores can hand out sessions
// without sharing mutable maps and slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	clone := *s

	if s.SearchResult != nil {
		clone.SearchResult = make([]CandidateRef, len(s.SearchResult))
		copy(clone.SearchResult, s.SearchResult)
	}

	if s.Metadata != nil {
		clone.Metadata = make(map[string]JobMetadata, len(s.Metadata))
		for k, v := range s.Metadata {
			if v.Requirements != nil {
				reqs := make([]string, len(v.Requirements))
				copy(reqs, v.Requirements)
				v.Requirements = reqs
			}
			clone.Metadata[k] = v
		}
	}

	if s.Vendors != nil {
		clone.Vendors = make(map[string]VendorPhaseState, len(s.Vendors))
		for k, v := range s.Vendors {
			if v.TopDocs != nil {
				docs := make([]ScoredDocument, len(v.TopDocs))
				copy(docs, v.TopDocs)
				v.TopDocs = docs
			}
			if v.Feedback != nil {
				fb := make(map[string]string, len(v.Feedback))
				for fk, fv := range v.Feedback {
					fb[fk] = fv
				}
				v.Feedback = fb
			}
			clone.Vendors[k] = v
		}
	}

	return &clone
}
