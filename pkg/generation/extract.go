package generation

import (
	"context"
	"encoding/json"
	"strings"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/pkg/llm"
)

// ExtractMetadata pulls the structured job-posting fields with a tiny model.
// A response that is not valid JSON yields empty metadata, not an error;
// downstream phases fall back to the common baseline per field.
func ExtractMetadata(ctx context.Context, client llm.Client, jobText string) (entity.JobMetadata, llm.Usage, error) {
	text, usage, err := client.Call(ctx, llm.SizeTiny, constant.ExtractMetadataSystemPrompt,
		llm.UserMessage(jobText), false)
	if err != nil {
		return entity.JobMetadata{}, usage, err
	}

	var meta entity.JobMetadata
	raw := extractJSON(text)
	if raw == "" {
		return entity.JobMetadata{}, usage, nil
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return entity.JobMetadata{}, usage, nil
	}
	return meta, usage, nil
}

// extractJSON strips markdown fences and surrounding prose, keeping the
// outermost object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
