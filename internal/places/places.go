package places

import (
	"context"
	"io"

	"github.com/vbonduro/lunchroulette/internal/domain"
)

// Status is the provider-reported outcome of a places request.
type Status string

const (
	StatusOK          Status = "OK"
	StatusZeroResults Status = "ZERO_RESULTS"
)

// PlaceTypeRestaurant restricts nearby search to restaurants.
const PlaceTypeRestaurant = "restaurant"

// DetailFields is the fixed field set requested for a selected place.
var DetailFields = []string{
	"name",
	"rating",
	"formatted_address",
	"photos",
	"price_level",
	"reviews",
	"website",
	"formatted_phone_number",
	"types",
	"vicinity",
}

type NearbyRequest struct {
	Location domain.GeoPoint
	Radius   int
	Type     string
	// Keyword is omitted from the request when empty.
	Keyword string
}

type NearbyResponse struct {
	Status     Status
	Candidates []domain.PlaceCandidate
}

type DetailRequest struct {
	PlaceID string
	Fields  []string
}

type DetailResponse struct {
	Status Status
	Detail domain.PlaceDetail
}

// Provider is the geo search and place detail collaborator. A non-nil error
// means the request could not be completed; a completed request with a non-OK
// provider status is reported through the response Status.
type Provider interface {
	NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error)
	Details(ctx context.Context, req DetailRequest) (*DetailResponse, error)
}

// ImageSource is an optional extension of Provider that serves place photos
// and map images so API keys never reach the browser.
type ImageSource interface {
	Photo(ctx context.Context, ref string, maxWidth int) (io.ReadCloser, string, error)
	StaticMap(ctx context.Context, center domain.GeoPoint, marker *domain.GeoPoint) (io.ReadCloser, string, error)
}
