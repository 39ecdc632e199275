package embedding

import (
	"context"
	"math"
)

// Task hints for providers that support asymmetric embeddings.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider generates a text embedding. Implementations return vectors
// normalized to unit length so pgvector cosine distance stays accurate.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}

// Normalize scales a vector to unit length. Required for cosine similarity
// against an index built from normalized vectors.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
