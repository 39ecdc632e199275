package openai

import (
	"context"
	"net/http"
	"time"

	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/pkg/llm"
	"ai-coverletter-be/pkg/llm/openaiwire"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Provider struct {
	apiKey   string
	baseURL  string
	resolver llm.ModelResolver
	logger   logger.ILogger
	client   *http.Client
}

// Ensure Provider implements llm.Client
var _ llm.Client = &Provider{}

func NewProvider(apiKey, baseURL string, resolver llm.ModelResolver, log logger.ILogger) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:   apiKey,
		baseURL:  baseURL,
		resolver: resolver,
		logger:   log,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (p *Provider) Vendor() string {
	return "openai"
}

func (p *Provider) Call(ctx context.Context, size llm.Size, system string, messages []llm.Message, search bool) (string, llm.Usage, error) {
	model, err := p.resolver.Model(p.Vendor(), size)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Err: err}
	}

	// Search grounding is not available on the chat completions surface.
	if search {
		p.logger.Warn("OpenAI", "Search grounding unsupported, proceeding without search", map[string]interface{}{
			"model": model,
		})
	}

	roleContents := make([][2]string, len(messages))
	for i, m := range messages {
		role := m.Role
		if role == "model" {
			role = "assistant"
		}
		roleContents[i] = [2]string{role, m.Content}
	}

	resp, err := openaiwire.Exchange(ctx, p.client, p.baseURL, p.apiKey, openaiwire.ChatRequest{
		Model:    model,
		Messages: openaiwire.BuildMessages(system, roleContents),
	})
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: err}
	}

	usage := llm.Usage{
		Model:        model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	usage.Cost = llm.CallCost(p.resolver, p.Vendor(), model, usage)

	return resp.Choices[0].Message.Content, usage, nil
}
