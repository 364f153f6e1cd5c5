package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/lunchroulette/internal/describe"
	"github.com/vbonduro/lunchroulette/internal/domain"
	"github.com/vbonduro/lunchroulette/internal/metrics"
	"github.com/vbonduro/lunchroulette/internal/places"
)

// Random yields values in [0,1).
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// Credentials are the provider keys the engine refuses to search without.
type Credentials struct {
	MapsAPIKey       string
	GenerationAPIKey string
}

// SelectionEngine picks a random rated restaurant near a point and enriches
// it with details and a generated menu description.
type SelectionEngine struct {
	creds     Credentials
	provider  places.Provider
	describer describe.Describer
	random    Random
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewSelectionEngine wires the engine. A nil random uses the goroutine-safe
// global source; a seeded *rand.Rand must not be shared across concurrent
// searches.
func NewSelectionEngine(
	creds Credentials,
	provider places.Provider,
	describer describe.Describer,
	random Random,
	logger *slog.Logger,
	m *metrics.Metrics,
) *SelectionEngine {
	if random == nil {
		random = globalRandom{}
	}
	return &SelectionEngine{
		creds:     creds,
		provider:  provider,
		describer: describer,
		random:    random,
		logger:    logger,
		metrics:   m,
	}
}

// Search runs one full selection. It never returns Idle or Loading and never
// panics; every failure is classified into a Failure result.
func (e *SelectionEngine) Search(ctx context.Context, criteria domain.SearchCriteria) (result domain.SearchResult) {
	start := time.Now()
	logger := e.logger.With("search_id", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("search panicked", "panic", r)
			result = domain.Failure(domain.ReasonUnexpected, fmt.Errorf("panic: %v", r))
		}
		e.metrics.ObserveSearch(outcome(result), time.Since(start))
		logger.Info("search finished", "state", result.State.String(), "reason", string(result.Reason),
			"duration_ms", time.Since(start).Milliseconds())
	}()

	if r, ok := e.checkPreconditions(); !ok {
		logger.Warn("search precondition failed", "reason", string(r))
		return domain.Failure(r, nil)
	}

	criteria = criteria.WithRadius(criteria.RadiusMeters)
	logger.Info("search started",
		"lat", criteria.Center.Lat, "lng", criteria.Center.Lng,
		"radius", criteria.RadiusMeters, "cuisine", criteria.Cuisine.String())

	nearby, err := e.provider.NearbySearch(ctx, places.NearbyRequest{
		Location: criteria.Center,
		Radius:   criteria.RadiusMeters,
		Type:     places.PlaceTypeRestaurant,
		Keyword:  criteria.Cuisine.Keyword(),
	})
	if err != nil {
		e.metrics.ProviderRequest("nearby_search", "error")
		return domain.Failure(domain.ReasonUnexpected, fmt.Errorf("nearby search: %w", err))
	}
	e.metrics.ProviderRequest("nearby_search", string(nearby.Status))
	logger.Debug("nearby search complete", "status", string(nearby.Status), "results", len(nearby.Candidates))

	if nearby.Status != places.StatusOK || len(nearby.Candidates) == 0 {
		return domain.Failure(domain.ReasonNoResults, fmt.Errorf("nearby search status %s", nearby.Status))
	}

	rated := RatedCandidates(nearby.Candidates)
	if len(rated) == 0 {
		return domain.Failure(domain.ReasonNoResults, fmt.Errorf("%d results, none rated", len(nearby.Candidates)))
	}

	candidate := rated[SelectIndex(e.random.Float64(), len(rated))]
	if candidate.ID == "" {
		return domain.Failure(domain.ReasonInvalidCandidate, nil)
	}
	logger.Info("candidate selected", "place_id", candidate.ID, "name", candidate.Name, "eligible", len(rated))

	detail, err := e.provider.Details(ctx, places.DetailRequest{PlaceID: candidate.ID, Fields: places.DetailFields})
	if err != nil {
		e.metrics.ProviderRequest("place_details", "error")
		return detailFailure(candidate, fmt.Errorf("place details: %w", err))
	}
	e.metrics.ProviderRequest("place_details", string(detail.Status))
	if detail.Status != places.StatusOK {
		return detailFailure(candidate, fmt.Errorf("place details status %s", detail.Status))
	}

	place := domain.Place{Candidate: candidate, Detail: detail.Detail}

	text, err := e.generate(ctx, place, criteria.Cuisine)
	if err != nil {
		e.metrics.ProviderRequest("text_generation", "error")
		logger.Warn("description generation failed", "place_id", candidate.ID, "error", err)
		return domain.Success(place, nil, domain.ReasonGeneration)
	}
	e.metrics.ProviderRequest("text_generation", "OK")

	return domain.Success(place, &domain.MenuDescription{Text: text}, "")
}

func (e *SelectionEngine) checkPreconditions() (domain.Reason, bool) {
	switch {
	case e.provider == nil:
		return domain.ReasonProviderUnavailable, false
	case e.creds.MapsAPIKey == "":
		return domain.ReasonMissingMapsKey, false
	case e.creds.GenerationAPIKey == "":
		return domain.ReasonMissingGenerationKey, false
	}
	return "", true
}

func (e *SelectionEngine) generate(ctx context.Context, place domain.Place, cuisine domain.Cuisine) (string, error) {
	if e.describer == nil {
		return "", fmt.Errorf("%w: no describer configured", domain.ErrGeneration)
	}
	text, err := e.describer.Describe(ctx, place, cuisine)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, describe.ErrNoContent)
	}
	return text, nil
}

// detailFailure keeps the already chosen candidate on the failed result so the
// view can still name it.
func detailFailure(candidate domain.PlaceCandidate, err error) domain.SearchResult {
	result := domain.Failure(domain.ReasonDetailFetch, err)
	result.Candidate = &candidate
	return result
}

// RatedCandidates returns the candidates eligible for selection, in order.
func RatedCandidates(candidates []domain.PlaceCandidate) []domain.PlaceCandidate {
	rated := make([]domain.PlaceCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Rated() {
			rated = append(rated, c)
		}
	}
	return rated
}

// SelectIndex maps r in [0,1) to floor(r*count). Out of range r is clamped so
// the result is always a valid index for count > 0.
func SelectIndex(r float64, count int) int {
	idx := int(math.Floor(r * float64(count)))
	if idx < 0 {
		return 0
	}
	if idx >= count {
		return count - 1
	}
	return idx
}

func outcome(r domain.SearchResult) string {
	switch r.State {
	case domain.StateSuccess:
		if r.Description == nil {
			return "success_without_description"
		}
		return "success"
	case domain.StateFailure:
		return string(r.Reason)
	default:
		return r.State.String()
	}
}

// IsCanceled reports whether a failed result was caused by its context being
// canceled.
func IsCanceled(r domain.SearchResult) bool {
	return r.State == domain.StateFailure && (errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded))
}
