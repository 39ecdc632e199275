package llm

import (
	"context"
)

// Size is the logical model tier requested by callers. Each vendor maps
// sizes to concrete model identifiers through its ModelResolver entry.
type Size string

const (
	SizeTiny   Size = "tiny"
	SizeBase   Size = "base"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeXLarge Size = "xlarge"
)

// Message represents a chat message in a vendor-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Usage reports what a single call consumed. Cost is computed by the client
// from its pricing table at call time, so callers can accumulate it without
// knowing which concrete model the size resolved to.
type Usage struct {
	Model         string
	InputTokens   int
	OutputTokens  int
	SearchQueries int
	Cost          float64
}

// Add accumulates another call's usage into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.SearchQueries += other.SearchQueries
	u.Cost += other.Cost
}

// ModelResolver maps (vendor, size) to a concrete model id and exposes the
// pricing table for cost accounting. Implemented by config.ModelTable, which
// hot-reloads from disk.
type ModelResolver interface {
	Model(vendor string, size Size) (string, error)
	Pricing(vendor, model string) (Pricing, bool)
}

// Client is the uniform contract for any AI model vendor backend.
//
// Implementations must not retry: a transient failure surfaces as a
// *CallError and the caller owns the retry policy. When search grounding is
// requested but the vendor does not support it, implementations log and
// proceed without search instead of failing.
type Client interface {
	// Vendor returns the registry key for this backend.
	Vendor() string

	// Call sends a system prompt plus user messages to the model mapped from
	// size and returns the response text with its usage.
	Call(ctx context.Context, size Size, system string, messages []Message, search bool) (string, Usage, error)
}

// UserMessage wraps a single prompt into the one-message history most calls
// need.
func UserMessage(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}
