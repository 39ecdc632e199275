package generation

import (
	"context"
	"fmt"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/pkg/llm"
)

// FancyLetter restructures the letter so paragraph initials spell the company
// name. The transform is formatting only; the model is bound to preserve the
// letter's meaning and claims.
func FancyLetter(ctx context.Context, client llm.Client, letter string, companyName string) (string, llm.Usage, error) {
	prompt := fmt.Sprintf("Company name to spell: %s\n\nLetter:\n%s", companyName, letter)
	return client.Call(ctx, llm.SizeMedium, constant.FancyLetterSystemPrompt,
		llm.UserMessage(prompt), false)
}
