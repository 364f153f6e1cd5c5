package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vbonduro/lunchroulette/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	place := domain.Place{Candidate: domain.PlaceCandidate{Name: "Jinju Hoegwan", Types: []string{"korean_restaurant", "food"}}}

	p := BuildPrompt(place, domain.CuisineKorean)

	assert.Equal(t, SystemPrompt, p.System)
	assert.Equal(t, "Restaurant name: Jinju Hoegwan\nType: korean_restaurant\nSelected category: 한식", p.User)
}

func TestBuildPrompt_DefaultsType(t *testing.T) {
	place := domain.Place{Candidate: domain.PlaceCandidate{Name: "Mystery Diner"}}

	p := BuildPrompt(place, domain.CuisineAll)

	assert.Contains(t, p.User, "Type: restaurant\n")
	assert.Contains(t, p.User, "Selected category: 전체")
}
