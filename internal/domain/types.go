package domain

import (
	"math"
	"strings"
)

const (
	MinRadiusMeters     = 100
	MaxRadiusMeters     = 5000
	DefaultRadiusMeters = 500
)

// DefaultCenter is the office location searches are centered on.
var DefaultCenter = GeoPoint{Lat: 37.560843, Lng: 126.975881}

type GeoPoint struct {
	Lat float64
	Lng float64
}

// ClampRadius bounds v to [MinRadiusMeters, MaxRadiusMeters].
func ClampRadius(v int) int {
	if v < MinRadiusMeters {
		return MinRadiusMeters
	}
	if v > MaxRadiusMeters {
		return MaxRadiusMeters
	}
	return v
}

type SearchCriteria struct {
	Center       GeoPoint
	RadiusMeters int
	Cuisine      Cuisine
}

// NewSearchCriteria returns criteria with the radius already clamped.
func NewSearchCriteria(center GeoPoint, radius int, cuisine Cuisine) SearchCriteria {
	return SearchCriteria{Center: center, RadiusMeters: ClampRadius(radius), Cuisine: cuisine}
}

// WithRadius returns a copy of c with radius clamped into range.
func (c SearchCriteria) WithRadius(radius int) SearchCriteria {
	c.RadiusMeters = ClampRadius(radius)
	return c
}

// WithCuisine returns a copy of c with the cuisine filter replaced.
func (c SearchCriteria) WithCuisine(cuisine Cuisine) SearchCriteria {
	c.Cuisine = cuisine
	return c
}

// PlaceCandidate is a nearby-search hit before details are fetched. Rating is
// nil when the provider did not report one.
type PlaceCandidate struct {
	ID       string
	Name     string
	Rating   *float64
	Types    []string
	Geometry GeoPoint
	Vicinity string
	Photos   []PhotoRef
}

// Rated reports whether the candidate is eligible for random selection. Any
// present rating counts, including 0.
func (p PlaceCandidate) Rated() bool {
	return p.Rating != nil
}

// PrimaryType returns the first reported type, or "restaurant".
func (p PlaceCandidate) PrimaryType() string {
	if len(p.Types) > 0 && p.Types[0] != "" {
		return p.Types[0]
	}
	return "restaurant"
}

type PhotoRef struct {
	Reference string
	Width     int
	Height    int
}

type Review struct {
	Author string
	Rating int
	Text   string
}

type PlaceDetail struct {
	Name             string
	Rating           *float64
	FormattedAddress string
	Phone            string
	Website          string
	PriceLevel       *int
	Types            []string
	Photos           []PhotoRef
	Reviews          []Review
	Vicinity         string
}

// Place is a candidate merged with its detail record.
type Place struct {
	Candidate PlaceCandidate
	Detail    PlaceDetail
}

func (p Place) Name() string {
	if p.Candidate.Name != "" {
		return p.Candidate.Name
	}
	return p.Detail.Name
}

// Vicinity is the address line shown for the place. The formatted address is
// used when neither record carries a vicinity.
func (p Place) Vicinity() string {
	switch {
	case p.Candidate.Vicinity != "":
		return p.Candidate.Vicinity
	case p.Detail.Vicinity != "":
		return p.Detail.Vicinity
	default:
		return p.Detail.FormattedAddress
	}
}

func (p Place) Rating() *float64 {
	if p.Candidate.Rating != nil {
		return p.Candidate.Rating
	}
	return p.Detail.Rating
}

// Types prefers the candidate's types, falling back to the detail's.
func (p Place) Types() []string {
	if len(p.Candidate.Types) > 0 {
		return p.Candidate.Types
	}
	return p.Detail.Types
}

func (p Place) PrimaryType() string {
	return PlaceCandidate{Types: p.Types()}.PrimaryType()
}

// Photo returns the first known photo, if any.
func (p Place) Photo() (PhotoRef, bool) {
	if len(p.Candidate.Photos) > 0 {
		return p.Candidate.Photos[0], true
	}
	if len(p.Detail.Photos) > 0 {
		return p.Detail.Photos[0], true
	}
	return PhotoRef{}, false
}

type MenuDescription struct {
	Text string
}

// Stars renders a rating as round(rating) star glyphs, rounding halves up.
func Stars(rating float64) string {
	n := int(math.Floor(rating + 0.5))
	if n < 0 {
		n = 0
	}
	return strings.Repeat("★", n)
}

// PriceSymbols renders a price level as won signs; an absent or zero level
// shows a single symbol.
func PriceSymbols(level *int) string {
	n := 1
	if level != nil && *level > 0 {
		n = *level
	}
	return strings.Repeat("₩", n)
}
