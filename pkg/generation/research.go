package generation

import (
	"context"
	"fmt"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/pkg/llm"
)

// ResearchCompany writes a company briefing with a medium model and live
// search. Vendors without search support degrade to prior knowledge.
func ResearchCompany(ctx context.Context, client llm.Client, meta entity.JobMetadata) (string, llm.Usage, error) {
	prompt := fmt.Sprintf("Company: %s", meta.CompanyName)
	if meta.JobTitle != "" {
		prompt += fmt.Sprintf("\nRole being applied for: %s", meta.JobTitle)
	}
	if meta.Location != "" {
		prompt += fmt.Sprintf("\nLocation: %s", meta.Location)
	}

	return client.Call(ctx, llm.SizeMedium, constant.ResearchCompanySystemPrompt,
		llm.UserMessage(prompt), true)
}
