package entity

import (
	"testing"
)

func TestMetadataForFallsBackPerField(t *testing.T) {
	session := &Session{
		Metadata: map[string]JobMetadata{
			MetadataCommonKey: {
				CompanyName:  "Acme GmbH",
				JobTitle:     "Backend Engineer",
				Location:     "Berlin",
				Language:     "en",
				Requirements: []string{"Go", "Postgres"},
			},
			"openai": {
				JobTitle: "Senior Backend Engineer",
				Salary:   "90k EUR",
			},
		},
	}

	merged := session.MetadataFor("openai")

	if merged.JobTitle != "Senior Backend Engineer" {
		t.Errorf("JobTitle = %q, vendor value should win", merged.JobTitle)
	}
	if merged.Salary != "90k EUR" {
		t.Errorf("Salary = %q, vendor value should win", merged.Salary)
	}
	if merged.CompanyName != "Acme GmbH" {
		t.Errorf("CompanyName = %q, should fall back to common", merged.CompanyName)
	}
	if merged.Location != "Berlin" || merged.Language != "en" {
		t.Errorf("Location/Language = %q/%q, should fall back to common", merged.Location, merged.Language)
	}
	if len(merged.Requirements) != 2 {
		t.Errorf("Requirements = %v, should fall back to common", merged.Requirements)
	}
}

func TestMetadataForUnknownVendorReturnsCommon(t *testing.T) {
	session := &Session{
		Metadata: map[string]JobMetadata{
			MetadataCommonKey: {CompanyName: "Acme GmbH"},
		},
	}

	merged := session.MetadataFor("gemini")
	if merged.CompanyName != "Acme GmbH" {
		t.Errorf("CompanyName = %q, want common baseline", merged.CompanyName)
	}
}

func TestMetadataForEmptyVendorExtraction(t *testing.T) {
	// A failed extraction is recorded as an empty vendor entry; every field
	// must read through to common.
	session := &Session{
		Metadata: map[string]JobMetadata{
			MetadataCommonKey: {CompanyName: "Acme GmbH", JobTitle: "Engineer"},
			"anthropic":       {},
		},
	}

	merged := session.MetadataFor("anthropic")
	if merged.CompanyName != "Acme GmbH" || merged.JobTitle != "Engineer" {
		t.Errorf("merged = %+v, want full common fallback", merged)
	}
}

func TestVendorStateZeroValuedWhenAbsent(t *testing.T) {
	session := &Session{}
	state := session.VendorState("openai")
	if state.DraftLetter != "" || state.Cost != 0 {
		t.Errorf("state = %+v, want zero value", state)
	}
}

func TestCloneIsDeep(t *testing.T) {
	session := &Session{
		Id: "sess-1",
		SearchResult: []CandidateRef{
			{Id: "doc-1", Score: 0.9},
		},
		Metadata: map[string]JobMetadata{
			"openai": {CompanyName: "Acme GmbH", Requirements: []string{"Go"}},
		},
		Vendors: map[string]VendorPhaseState{
			"openai": {
				DraftLetter: "draft",
				TopDocs:     []ScoredDocument{{CompanyName: "Ref Co"}},
				Feedback:    map[string]string{"accuracy": "ALL CLEAR."},
			},
		},
	}

	clone := session.Clone()

	clone.SearchResult[0].Id = "mutated"
	clone.Metadata["openai"] = JobMetadata{CompanyName: "Mutated"}

	state := clone.Vendors["openai"]
	state.TopDocs[0].CompanyName = "mutated"
	state.Feedback["accuracy"] = "mutated"
	clone.Vendors["openai"] = state

	if session.SearchResult[0].Id != "doc-1" {
		t.Error("SearchResult shared between clone and original")
	}
	if session.Metadata["openai"].CompanyName != "Acme GmbH" {
		t.Error("Metadata shared between clone and original")
	}
	if session.Vendors["openai"].TopDocs[0].CompanyName != "Ref Co" {
		t.Error("TopDocs shared between clone and original")
	}
	if session.Vendors["openai"].Feedback["accuracy"] != "ALL CLEAR." {
		t.Error("Feedback shared between clone and original")
	}
}

func TestCandidateRefInline(t *testing.T) {
	if (CandidateRef{Id: "x"}).Inline() {
		t.Error("ref without content should not be inline")
	}
	if !(CandidateRef{Id: "x", LetterText: "letter"}).Inline() {
		t.Error("ref with letter text should be inline")
	}
	if !(CandidateRef{JobText: "job"}).Inline() {
		t.Error("ref with job text should be inline")
	}
}

func TestJobMetadataIsEmpty(t *testing.T) {
	if !(JobMetadata{}).IsEmpty() {
		t.Error("zero value should be empty")
	}
	if (JobMetadata{Salary: "100k"}).IsEmpty() {
		t.Error("metadata with a field set should not be empty")
	}
}
