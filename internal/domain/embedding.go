package domain

import "context"

// KeyPrefix namespaces all store keys written by this service.
const KeyPrefix = "smartneed:"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Summarizer produces a free-text summary from a prompt. Shares the
// embedding provider's failure taxonomy.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
