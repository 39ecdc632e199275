package generation

import (
	"context"
	"fmt"
	"strings"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/pkg/llm"
)

// RewriteLetter revises the draft against actionable feedback with a large
// model. When the model answers with the no-revisions sentinel, the original
// draft is returned unchanged.
func RewriteLetter(ctx context.Context, client llm.Client, draft string, feedback map[string]string, styleInstructions string) (string, llm.Usage, error) {
	var sb strings.Builder

	sb.WriteString("Cover letter draft:\n")
	sb.WriteString(draft)

	sb.WriteString("\n\nReviewer feedback:\n")
	for _, check := range constant.CheckNames {
		entry, ok := feedback[check]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "\n[%s]\n%s\n", check, entry)
	}

	if styleInstructions != "" {
		sb.WriteString("\nStyle instructions (still binding):\n")
		sb.WriteString(styleInstructions)
	}

	text, usage, err := client.Call(ctx, llm.SizeLarge, constant.RewriteLetterSystemPrompt,
		llm.UserMessage(sb.String()), false)
	if err != nil {
		return "", usage, err
	}

	normalized := strings.ToUpper(strings.TrimSpace(text))
	if strings.HasPrefix(normalized, constant.RewriteNoRevisions) || strings.HasSuffix(normalized, constant.RewriteNoRevisions) {
		return draft, usage, nil
	}
	return strings.TrimSpace(text), usage, nil
}
