package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/lunchroulette/internal/domain"
	"github.com/vbonduro/lunchroulette/internal/metrics"
	"github.com/vbonduro/lunchroulette/internal/places"
)

// stubPlaces is a recording places.Provider for tests.
type stubPlaces struct {
	nearby    *places.NearbyResponse
	nearbyErr error
	detail    *places.DetailResponse
	detailErr error
	panicOn   string

	nearbyCalls []places.NearbyRequest
	detailCalls []places.DetailRequest
}

func (s *stubPlaces) NearbySearch(_ context.Context, req places.NearbyRequest) (*places.NearbyResponse, error) {
	s.nearbyCalls = append(s.nearbyCalls, req)
	if s.panicOn == "nearby" {
		panic("provider exploded")
	}
	return s.nearby, s.nearbyErr
}

func (s *stubPlaces) Details(_ context.Context, req places.DetailRequest) (*places.DetailResponse, error) {
	s.detailCalls = append(s.detailCalls, req)
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	if s.detail == nil {
		return &places.DetailResponse{Status: places.StatusOK, Detail: domain.PlaceDetail{Name: "detail-" + req.PlaceID}}, nil
	}
	return s.detail, nil
}

// stubDescriber is a recording describe.Describer for tests.
type stubDescriber struct {
	text  string
	err   error
	calls []domain.Place
	cuis  []domain.Cuisine
}

func (s *stubDescriber) Describe(_ context.Context, place domain.Place, cuisine domain.Cuisine) (string, error) {
	s.calls = append(s.calls, place)
	s.cuis = append(s.cuis, cuisine)
	return s.text, s.err
}

// fixedRandom always yields the same value.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

var testCreds = Credentials{MapsAPIKey: "maps-key", GenerationAPIKey: "gen-key"}

func ptr[T any](v T) *T { return &v }

func rated(id string, rating float64) domain.PlaceCandidate {
	return domain.PlaceCandidate{ID: id, Name: "name-" + id, Rating: ptr(rating), Types: []string{"restaurant"}}
}

func unrated(id string) domain.PlaceCandidate {
	return domain.PlaceCandidate{ID: id, Name: "name-" + id}
}

func okNearby(candidates ...domain.PlaceCandidate) *places.NearbyResponse {
	return &places.NearbyResponse{Status: places.StatusOK, Candidates: candidates}
}

func newTestEngine(p places.Provider, d *stubDescriber, r Random) *SelectionEngine {
	return NewSelectionEngine(testCreds, p, d, r, slog.Default(), nil)
}

func defaultCriteria() domain.SearchCriteria {
	return domain.NewSearchCriteria(domain.DefaultCenter, 500, domain.CuisineAll)
}

func TestSearch_EndToEnd(t *testing.T) {
	p := &stubPlaces{
		nearby: okNearby(rated("a", 4.0), unrated("b"), rated("c", 4.5)),
		detail: &places.DetailResponse{Status: places.StatusOK, Detail: domain.PlaceDetail{
			Name:             "Jinokhwa Halmae Dakhanmari",
			FormattedAddress: "18 Jong-ro 40ga-gil, Jongno-gu, Seoul",
		}},
	}
	d := &stubDescriber{text: "Try the bibimbap."}
	// floor(0.5 * 2) = 1 -> the second rated candidate.
	e := newTestEngine(p, d, fixedRandom(0.5))

	result := e.Search(context.Background(), defaultCriteria())

	require.Equal(t, domain.StateSuccess, result.State)
	assert.Equal(t, "c", result.Place.Candidate.ID)
	assert.Equal(t, "name-c", result.Place.Name())
	assert.Equal(t, "18 Jong-ro 40ga-gil, Jongno-gu, Seoul", result.Place.Detail.FormattedAddress)
	require.NotNil(t, result.Description)
	assert.Equal(t, "Try the bibimbap.", result.Description.Text)
	assert.Equal(t, "★★★★★", domain.Stars(*result.Place.Rating()))
	assert.Empty(t, result.Message())

	require.Len(t, p.nearbyCalls, 1)
	req := p.nearbyCalls[0]
	assert.Equal(t, domain.DefaultCenter, req.Location)
	assert.Equal(t, 500, req.Radius)
	assert.Equal(t, places.PlaceTypeRestaurant, req.Type)
	assert.Empty(t, req.Keyword)

	require.Len(t, p.detailCalls, 1)
	assert.Equal(t, "c", p.detailCalls[0].PlaceID)
	assert.Equal(t, places.DetailFields, p.detailCalls[0].Fields)

	require.Len(t, d.calls, 1)
	assert.Equal(t, "c", d.calls[0].Candidate.ID)
	assert.Equal(t, domain.CuisineAll, d.cuis[0])
}

func TestSearch_SendsCuisineKeyword(t *testing.T) {
	p := &stubPlaces{nearby: okNearby(rated("a", 3.9))}
	d := &stubDescriber{text: "ok"}
	e := newTestEngine(p, d, fixedRandom(0))

	criteria := domain.NewSearchCriteria(domain.DefaultCenter, 800, domain.CuisineJapanese)
	result := e.Search(context.Background(), criteria)

	require.Equal(t, domain.StateSuccess, result.State)
	assert.Equal(t, "일식", p.nearbyCalls[0].Keyword)
	assert.Equal(t, domain.CuisineJapanese, d.cuis[0])
}

func TestSearch_ClampsRadius(t *testing.T) {
	p := &stubPlaces{nearby: okNearby(rated("a", 3.9))}
	e := newTestEngine(p, &stubDescriber{text: "ok"}, fixedRandom(0))

	criteria := defaultCriteria()
	criteria.RadiusMeters = 90000
	e.Search(context.Background(), criteria)

	assert.Equal(t, domain.MaxRadiusMeters, p.nearbyCalls[0].Radius)
}

func TestSearch_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		provider places.Provider
		creds    Credentials
		want     domain.Reason
		wantErr  error
	}{
		{"no provider", nil, testCreds, domain.ReasonProviderUnavailable, domain.ErrProviderUnavailable},
		{"no maps key", &stubPlaces{}, Credentials{GenerationAPIKey: "g"}, domain.ReasonMissingMapsKey, domain.ErrConfiguration},
		{"no generation key", &stubPlaces{}, Credentials{MapsAPIKey: "m"}, domain.ReasonMissingGenerationKey, domain.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &stubDescriber{text: "unused"}
			e := NewSelectionEngine(tt.creds, tt.provider, d, fixedRandom(0), slog.Default(), nil)

			result := e.Search(context.Background(), defaultCriteria())

			assert.Equal(t, domain.StateFailure, result.State)
			assert.Equal(t, tt.want, result.Reason)
			assert.ErrorIs(t, result.Err, tt.wantErr)
			assert.Empty(t, d.calls)
			if sp, ok := tt.provider.(*stubPlaces); ok {
				assert.Empty(t, sp.nearbyCalls, "no network call may be attempted")
				assert.Empty(t, sp.detailCalls)
			}
		})
	}
}

func TestSearch_NoResults(t *testing.T) {
	tests := []struct {
		name   string
		nearby *places.NearbyResponse
	}{
		{"zero results", &places.NearbyResponse{Status: places.StatusZeroResults}},
		{"non-OK status", &places.NearbyResponse{Status: "OVER_QUERY_LIMIT", Candidates: []domain.PlaceCandidate{rated("a", 4)}}},
		{"OK but empty", okNearby()},
		{"none rated", okNearby(unrated("a"), unrated("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubPlaces{nearby: tt.nearby}
			d := &stubDescriber{text: "unused"}
			e := newTestEngine(p, d, fixedRandom(0))

			result := e.Search(context.Background(), defaultCriteria())

			assert.Equal(t, domain.StateFailure, result.State)
			assert.Equal(t, domain.ReasonNoResults, result.Reason)
			assert.ErrorIs(t, result.Err, domain.ErrNoResults)
			assert.Empty(t, p.detailCalls)
			assert.Empty(t, d.calls)
		})
	}
}

func TestSearch_SucceedsIffAnyRated(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.IntN(8)
		var candidates []domain.PlaceCandidate
		m := 0
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			if rng.IntN(2) == 0 {
				candidates = append(candidates, rated(id, 3.5))
				m++
			} else {
				candidates = append(candidates, unrated(id))
			}
		}

		p := &stubPlaces{nearby: okNearby(candidates...)}
		e := newTestEngine(p, &stubDescriber{text: "ok"}, rng)
		result := e.Search(context.Background(), defaultCriteria())

		if m > 0 {
			require.Equal(t, domain.StateSuccess, result.State, "trial %d: %d of %d rated", trial, m, n)
			assert.True(t, result.Place.Candidate.Rated())
		} else {
			require.Equal(t, domain.ReasonNoResults, result.Reason, "trial %d", trial)
		}
	}
}

func TestSearch_UniformSelection(t *testing.T) {
	candidates := []domain.PlaceCandidate{
		rated("a", 4.1), unrated("x"), rated("b", 3.2), rated("c", 4.8), unrated("y"), rated("d", 2.0),
	}
	p := &stubPlaces{nearby: okNearby(candidates...)}
	e := newTestEngine(p, &stubDescriber{text: "ok"}, rand.New(rand.NewPCG(42, 1024)))

	const trials = 20000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		result := e.Search(context.Background(), defaultCriteria())
		require.Equal(t, domain.StateSuccess, result.State)
		counts[result.Place.Candidate.ID]++
	}

	require.Len(t, counts, 4, "only rated candidates may be selected")
	expected := float64(trials) / 4
	for id, n := range counts {
		// 5 standard deviations of a binomial(20000, 0.25) is about 306.
		assert.InDelta(t, expected, float64(n), 400, "candidate %s selected %d times", id, n)
	}
}

func TestSelectIndex(t *testing.T) {
	assert.Equal(t, 0, SelectIndex(0, 3))
	assert.Equal(t, 0, SelectIndex(0.333, 3))
	assert.Equal(t, 1, SelectIndex(0.334, 3))
	assert.Equal(t, 2, SelectIndex(0.9999999, 3))
	assert.Equal(t, 2, SelectIndex(1, 3))
	assert.Equal(t, 0, SelectIndex(-0.5, 3))
}

func TestSearch_InvalidCandidate(t *testing.T) {
	p := &stubPlaces{nearby: okNearby(domain.PlaceCandidate{Name: "No ID", Rating: ptr(4.0)})}
	d := &stubDescriber{text: "unused"}
	e := newTestEngine(p, d, fixedRandom(0))

	result := e.Search(context.Background(), defaultCriteria())

	assert.Equal(t, domain.ReasonInvalidCandidate, result.Reason)
	assert.ErrorIs(t, result.Err, domain.ErrInvalidCandidate)
	assert.Empty(t, p.detailCalls)
	assert.Empty(t, d.calls)
}

func TestSearch_DetailFetchFailed(t *testing.T) {
	tests := []struct {
		name string
		p    *stubPlaces
	}{
		{"non-OK status", &stubPlaces{
			nearby: okNearby(rated("a", 4.0)),
			detail: &places.DetailResponse{Status: "NOT_FOUND"},
		}},
		{"transport error", &stubPlaces{
			nearby:    okNearby(rated("a", 4.0)),
			detailErr: errors.New("connection reset"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &stubDescriber{text: "unused"}
			e := newTestEngine(tt.p, d, fixedRandom(0))

			result := e.Search(context.Background(), defaultCriteria())

			assert.Equal(t, domain.StateFailure, result.State)
			assert.Equal(t, domain.ReasonDetailFetch, result.Reason)
			assert.ErrorIs(t, result.Err, domain.ErrDetailFetch)
			require.NotNil(t, result.Candidate)
			assert.Equal(t, "a", result.Candidate.ID)
			assert.Empty(t, d.calls, "generation must not be called")
		})
	}
}

func TestSearch_DescriptionFailureIsNonFatal(t *testing.T) {
	p := &stubPlaces{nearby: okNearby(rated("a", 4.0))}
	d := &stubDescriber{err: errors.New("context deadline exceeded")}
	e := newTestEngine(p, d, fixedRandom(0))

	result := e.Search(context.Background(), defaultCriteria())

	require.Equal(t, domain.StateSuccess, result.State)
	assert.Nil(t, result.Description)
	assert.Equal(t, domain.ReasonGeneration, result.DescriptionReason)
	assert.Equal(t, "a", result.Place.Candidate.ID)
	assert.Equal(t, "detail-a", result.Place.Detail.Name)
	assert.Equal(t, domain.ReasonGeneration.Message(), result.Message())
}

func TestSearch_EmptyDescriptionIsGenerationFailure(t *testing.T) {
	p := &stubPlaces{nearby: okNearby(rated("a", 4.0))}
	e := newTestEngine(p, &stubDescriber{text: ""}, fixedRandom(0))

	result := e.Search(context.Background(), defaultCriteria())

	require.Equal(t, domain.StateSuccess, result.State)
	assert.Nil(t, result.Description)
	assert.Equal(t, domain.ReasonGeneration, result.DescriptionReason)
}

func TestSearch_NearbyTransportErrorIsUnexpected(t *testing.T) {
	p := &stubPlaces{nearbyErr: errors.New("dial tcp: i/o timeout")}
	e := newTestEngine(p, &stubDescriber{}, fixedRandom(0))

	result := e.Search(context.Background(), defaultCriteria())

	assert.Equal(t, domain.ReasonUnexpected, result.Reason)
	assert.ErrorIs(t, result.Err, domain.ErrUnexpected)
}

func TestSearch_RecoversPanic(t *testing.T) {
	p := &stubPlaces{panicOn: "nearby"}
	e := newTestEngine(p, &stubDescriber{}, fixedRandom(0))

	var result domain.SearchResult
	require.NotPanics(t, func() {
		result = e.Search(context.Background(), defaultCriteria())
	})
	assert.Equal(t, domain.StateFailure, result.State)
	assert.Equal(t, domain.ReasonUnexpected, result.Reason)
}

func TestSearch_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := &stubPlaces{nearby: okNearby(rated("a", 4.0))}
	e := NewSelectionEngine(testCreds, p, &stubDescriber{text: "ok"}, fixedRandom(0), slog.Default(), metrics.New(reg))

	e.Search(context.Background(), defaultCriteria())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["lunchroulette_searches_total"])
	assert.True(t, names["lunchroulette_provider_requests_total"])
}
