package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/coderopp/smartneed/internal/domain"
)

// Summarizer produces comparison summaries via chat completions.
// It shares the embedder's error taxonomy: 429 -> ErrRateLimited,
// other provider failures -> ErrEmbeddingUnavailable.
type Summarizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewSummarizer creates a chat-completion summarizer.
func NewSummarizer(cfg *Config, chatModel string) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Summarizer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  chatModel,
		logger: cfg.Logger,
	}
}

// Summarize implements domain.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a shopping assistant. Compare the given products concisely and factually.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrEmbeddingUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
