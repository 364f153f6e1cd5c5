package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/lunchroulette/internal/describe"
	"github.com/vbonduro/lunchroulette/internal/domain"
)

const DefaultModel = anthropic.ModelClaude3Haiku20240307

type ClaudeDescriber struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewClaudeDescriber(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeDescriber {
	m := anthropic.Model(model)
	if model == "" {
		m = DefaultModel
	}
	return &ClaudeDescriber{
		client: anthropic.NewClient(apiKey, opts...),
		model:  m,
	}
}

func (d *ClaudeDescriber) Describe(ctx context.Context, place domain.Place, cuisine domain.Cuisine) (string, error) {
	prompt := describe.BuildPrompt(place, cuisine)
	temperature := float32(describe.Temperature)

	resp, err := d.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       d.model,
		System:      prompt.System,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt.User)},
		MaxTokens:   describe.MaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText && blk.Text != nil {
			if text := strings.TrimSpace(*blk.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", describe.ErrNoContent
}
