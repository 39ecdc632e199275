package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/pkg/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 4096
)

type Provider struct {
	apiKey   string
	baseURL  string
	resolver llm.ModelResolver
	logger   logger.ILogger
	client   *http.Client
}

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

// --- Request/Response structs (internal to this package) ---

type messageRequest struct {
	Model     string           `json:"model"`
	System    string           `json:"system,omitempty"`
	Messages  []requestMessage `json:"messages"`
	MaxTokens int              `json:"max_tokens"`
	Tools     []toolSpec       `json:"tools,omitempty"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolSpec struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens   int `json:"input_tokens"`
		OutputTokens  int `json:"output_tokens"`
		ServerToolUse struct {
			WebSearchRequests int `json:"web_search_requests"`
		} `json:"server_tool_use"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *Provider) Vendor() string {
	return "anthropic"
}

func (p *Provider) Call(ctx context.Context, size llm.Size, system string, messages []llm.Message, search bool) (string, llm.Usage, error) {
	model, err := p.resolver.Model(p.Vendor(), size)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Err: err}
	}

	reqMessages := make([]requestMessage, len(messages))
	for i, m := range messages {
		role := m.Role
		if role == "model" || role == "system" {
			role = "assistant"
		}
		reqMessages[i] = requestMessage{Role: role, Content: m.Content}
	}

	reqPayload := messageRequest{
		Model:     model,
		System:    system,
		Messages:  reqMessages,
		MaxTokens: maxTokens,
	}
	if search {
		reqPayload.Tools = []toolSpec{{Type: "web_search_20250305", Name: "web_search"}}
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := p.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", llm.Usage{}, &llm.CallError{
			Vendor: p.Vendor(), Model: model,
			Err: fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var msgResp messageResponse
	if err := json.Unmarshal(bodyBytes, &msgResp); err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("decode response: %w", err)}
	}
	if msgResp.Error != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("api returned error: %s", msgResp.Error.Message)}
	}

	var text string
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("no text content in response")}
	}

	usage := llm.Usage{
		Model:         model,
		InputTokens:   msgResp.Usage.InputTokens,
		OutputTokens:  msgResp.Usage.OutputTokens,
		SearchQueries: msgResp.Usage.ServerToolUse.WebSearchRequests,
	}
	usage.Cost = llm.CallCost(p.resolver, p.Vendor(), model, usage)

	return text, usage, nil
}
