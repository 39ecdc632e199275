package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

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

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
	Tools             []tool    `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			WebSearchQueries []string `json:"webSearchQueries"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *Provider) Vendor() string {
	return "gemini"
}

func (p *Provider) Call(ctx context.Context, size llm.Size, system string, messages []llm.Message, search bool) (string, llm.Usage, error) {
	model, err := p.resolver.Model(p.Vendor(), size)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Err: err}
	}

	contents := make([]content, len(messages))
	for i, m := range messages {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		contents[i] = content{Role: role, Parts: []part{{Text: m.Content}}}
	}

	reqPayload := generateRequest{Contents: contents}
	if system != "" {
		reqPayload.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if search {
		reqPayload.Tools = []tool{{}}
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

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

	var genResp generateResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(genResp.Candidates) == 0 {
		return "", llm.Usage{}, &llm.CallError{Vendor: p.Vendor(), Model: model, Err: fmt.Errorf("empty candidates in response")}
	}

	candidate := genResp.Candidates[0]
	var text string
	for _, pt := range candidate.Content.Parts {
		text += pt.Text
	}

	searchQueries := 0
	if candidate.GroundingMetadata != nil {
		searchQueries = len(candidate.GroundingMetadata.WebSearchQueries)
	}

	usage := llm.Usage{
		Model:         model,
		InputTokens:   genResp.UsageMetadata.PromptTokenCount,
		OutputTokens:  genResp.UsageMetadata.CandidatesTokenCount,
		SearchQueries: searchQueries,
	}
	usage.Cost = llm.CallCost(p.resolver, p.Vendor(), model, usage)

	return text, usage, nil
}
