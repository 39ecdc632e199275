package generation

import (
	"context"
	"fmt"
	"strings"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/pkg/llm"
)

// DraftInput carries everything the draft prompt is built from.
type DraftInput struct {
	JobText           string
	CvText            string
	StyleInstructions string
	Metadata          entity.JobMetadata
	CompanyReport     string
	TopDocs           []entity.ScoredDocument
}

// DraftLetter generates the cover letter with the xlarge model.
func DraftLetter(ctx context.Context, client llm.Client, in DraftInput) (string, llm.Usage, error) {
	var sb strings.Builder

	sb.WriteString("Job posting:\n")
	sb.WriteString(in.JobText)
	sb.WriteString("\n\nCandidate CV:\n")
	sb.WriteString(in.CvText)

	if in.Metadata.CompanyName != "" {
		fmt.Fprintf(&sb, "\n\nCompany: %s", in.Metadata.CompanyName)
	}
	if in.Metadata.JobTitle != "" {
		fmt.Fprintf(&sb, "\nRole: %s", in.Metadata.JobTitle)
	}
	if in.Metadata.PointOfContact != "" {
		fmt.Fprintf(&sb, "\nAddress the letter to: %s", in.Metadata.PointOfContact)
	}
	if in.Metadata.Language != "" {
		fmt.Fprintf(&sb, "\nWrite the letter in language: %s", in.Metadata.Language)
	}

	if in.CompanyReport != "" {
		sb.WriteString("\n\nCompany briefing:\n")
		sb.WriteString(in.CompanyReport)
	}

	if in.StyleInstructions != "" {
		sb.WriteString("\n\nStyle instructions:\n")
		sb.WriteString(in.StyleInstructions)
	}

	for i, doc := range in.TopDocs {
		fmt.Fprintf(&sb, "\n\nReference letter %d (written for %s):\n%s", i+1, doc.CompanyName, doc.LetterText)
	}

	return client.Call(ctx, llm.SizeXLarge, constant.DraftLetterSystemPrompt,
		llm.UserMessage(sb.String()), false)
}
