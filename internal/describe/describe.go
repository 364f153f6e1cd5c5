package describe

import (
	"context"
	"errors"
	"fmt"

	"github.com/vbonduro/lunchroulette/internal/domain"
)

// SystemPrompt establishes the local food expert persona shared by all
// backends.
const SystemPrompt = "You are a local food expert in Korea. Based on the restaurant information given, " +
	"describe its likely menu items and what makes it worth a visit in two or three sentences."

const (
	Temperature = 0.7
	MaxTokens   = 200
)

// ErrNoContent is returned when a provider answers without any text.
var ErrNoContent = errors.New("no content in completion")

// Describer produces a short menu description for a place.
type Describer interface {
	Describe(ctx context.Context, place domain.Place, cuisine domain.Cuisine) (string, error)
}

// Prompt is the fixed two-message conversation sent to a backend.
type Prompt struct {
	System string
	User   string
}

func BuildPrompt(place domain.Place, cuisine domain.Cuisine) Prompt {
	return Prompt{
		System: SystemPrompt,
		User: fmt.Sprintf("Restaurant name: %s\nType: %s\nSelected category: %s",
			place.Name(), place.PrimaryType(), cuisine.Label()),
	}
}
