package generation

import (
	"context"
	"testing"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/pkg/llm"
)

func TestRewriteLetterAppliesRevision(t *testing.T) {
	client := &stubClient{responses: []string{"  Dear Acme team,\n\nrevised letter body.  "}}

	feedback := map[string]string{
		constant.CheckAccuracy: "Salary claim is wrong.\nISSUES FOUND.",
	}

	final, _, err := RewriteLetter(context.Background(), client, "original draft", feedback, "keep it short")
	if err != nil {
		t.Fatalf("RewriteLetter() error = %v", err)
	}
	if final != "Dear Acme team,\n\nrevised letter body." {
		t.Errorf("final = %q, want trimmed rewrite", final)
	}
	if client.lastSize != llm.SizeLarge {
		t.Errorf("rewrite ran with size %q, want %q", client.lastSize, llm.SizeLarge)
	}
}

func TestRewriteLetterNoRevisionsKeepsDraft(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"sentinel alone", "NO REVISIONS NEEDED."},
		{"sentinel leads explanation", "No revisions needed. The feedback was already addressed."},
		{"sentinel trails explanation", "The draft already covers everything.\nNO REVISIONS NEEDED."},
	}

	draft := "the untouched draft"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{responses: []string{tt.response}}

			final, _, err := RewriteLetter(context.Background(), client, draft, map[string]string{
				constant.CheckHuman: "Sounds robotic.\nISSUES FOUND.",
			}, "")
			if err != nil {
				t.Fatalf("RewriteLetter() error = %v", err)
			}
			if final != draft {
				t.Errorf("final = %q, want draft returned unchanged", final)
			}
		})
	}
}
