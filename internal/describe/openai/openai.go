package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/vbonduro/lunchroulette/internal/describe"
	"github.com/vbonduro/lunchroulette/internal/domain"
)

const DefaultModel = goopenai.GPT3Dot5Turbo

type OpenAIDescriber struct {
	client *goopenai.Client
	model  string
}

// NewOpenAIDescriber builds a describer; baseURL may be empty to use the
// public API.
func NewOpenAIDescriber(apiKey, model, baseURL string) *OpenAIDescriber {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIDescriber{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (d *OpenAIDescriber) Describe(ctx context.Context, place domain.Place, cuisine domain.Cuisine) (string, error) {
	prompt := describe.BuildPrompt(place, cuisine)

	resp, err := d.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: d.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: describe.Temperature,
		MaxTokens:   describe.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", describe.ErrNoContent
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", describe.ErrNoContent
	}
	return text, nil
}
