package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vbonduro/lunchroulette/internal/describe"
	"github.com/vbonduro/lunchroulette/internal/domain"
)

const DefaultModel = "gemini-2.0-flash"

type GeminiDescriber struct {
	client *genai.Client
	model  string
}

// NewGeminiDescriber builds a Gemini API backed describer. baseURL may be
// empty to use the public endpoint.
func NewGeminiDescriber(ctx context.Context, apiKey, model, baseURL string) (*GeminiDescriber, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiDescriber{client: client, model: model}, nil
}

func (d *GeminiDescriber) Describe(ctx context.Context, place domain.Place, cuisine domain.Cuisine) (string, error) {
	prompt := describe.BuildPrompt(place, cuisine)

	resp, err := d.client.Models.GenerateContent(ctx, d.model, genai.Text(prompt.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr[float32](describe.Temperature),
		MaxOutputTokens:   describe.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", describe.ErrNoContent
	}
	return text, nil
}
