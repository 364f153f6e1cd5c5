package domain

import "errors"

var (
	ErrConfiguration       = errors.New("required credential is not configured")
	ErrProviderUnavailable = errors.New("geo search provider is not initialized")
	ErrNoResults           = errors.New("no rated results")
	ErrInvalidCandidate    = errors.New("selected candidate has no place id")
	ErrDetailFetch         = errors.New("place detail fetch failed")
	ErrGeneration          = errors.New("description generation failed")
	ErrUnexpected          = errors.New("unexpected search failure")
)

// Reason identifies why a search (or its description) failed. Each reason maps
// to exactly one user-facing message.
type Reason string

const (
	ReasonProviderUnavailable  Reason = "provider_unavailable"
	ReasonMissingMapsKey       Reason = "config.maps_key"
	ReasonMissingGenerationKey Reason = "config.generation_key"
	ReasonNoResults            Reason = "no_results"
	ReasonInvalidCandidate     Reason = "invalid_candidate"
	ReasonDetailFetch          Reason = "detail_fetch_failed"
	ReasonGeneration           Reason = "generation_failed"
	ReasonUnexpected           Reason = "unexpected"
)

var reasonMessages = map[Reason]string{
	ReasonProviderUnavailable:  "The map is not initialized. Please reload the page.",
	ReasonMissingMapsKey:       "The Google Maps API key is not configured.",
	ReasonMissingGenerationKey: "The text generation API key is not configured.",
	ReasonNoResults:            "No restaurants found. Try a different radius or cuisine.",
	ReasonInvalidCandidate:     "The selected restaurant has invalid information. Please try again.",
	ReasonDetailFetch:          "Failed to load restaurant details.",
	ReasonGeneration:           "Failed to load menu information.",
	ReasonUnexpected:           "Something went wrong while searching.",
}

// Message is the user-facing text for r.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return reasonMessages[ReasonUnexpected]
}

// IsConfig reports whether r is a missing-credential failure.
func (r Reason) IsConfig() bool {
	return r == ReasonMissingMapsKey || r == ReasonMissingGenerationKey
}

// Err returns the sentinel error r classifies.
func (r Reason) Err() error {
	switch r {
	case ReasonProviderUnavailable:
		return ErrProviderUnavailable
	case ReasonMissingMapsKey, ReasonMissingGenerationKey:
		return ErrConfiguration
	case ReasonNoResults:
		return ErrNoResults
	case ReasonInvalidCandidate:
		return ErrInvalidCandidate
	case ReasonDetailFetch:
		return ErrDetailFetch
	case ReasonGeneration:
		return ErrGeneration
	default:
		return ErrUnexpected
	}
}
