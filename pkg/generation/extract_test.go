package generation

import (
	"context"
	"testing"

	"ai-coverletter-be/pkg/llm"
)

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantCompany string
		wantEmpty   bool
	}{
		{
			name:        "clean JSON",
			response:    `{"company_name": "Acme GmbH", "job_title": "Backend Engineer", "language": "en"}`,
			wantCompany: "Acme GmbH",
		},
		{
			name:        "fenced JSON with prose",
			response:    "Here is the extraction:\n```json\n{\"company_name\": \"Acme GmbH\"}\n```\nDone.",
			wantCompany: "Acme GmbH",
		},
		{
			name:      "no JSON yields empty metadata, not an error",
			response:  "Sorry, I could not find any structured fields.",
			wantEmpty: true,
		},
		{
			name:      "broken JSON yields empty metadata, not an error",
			response:  `{"company_name": "Acme`,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{responses: []string{tt.response}}

			meta, _, err := ExtractMetadata(context.Background(), client, "We are hiring...")
			if err != nil {
				t.Fatalf("ExtractMetadata() error = %v", err)
			}
			if tt.wantEmpty {
				if !meta.IsEmpty() {
					t.Errorf("metadata = %+v, want empty", meta)
				}
				return
			}
			if meta.CompanyName != tt.wantCompany {
				t.Errorf("CompanyName = %q, want %q", meta.CompanyName, tt.wantCompany)
			}
			if client.lastSize != llm.SizeTiny {
				t.Errorf("extraction ran with size %q, want %q", client.lastSize, llm.SizeTiny)
			}
		})
	}
}
