package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAI talks to any OpenAI-compatible chat completions endpoint,
// OpenRouter by default.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate sends prompt as the system message and returns the first choice.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", o.model, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
