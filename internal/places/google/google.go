package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/lunchroulette/internal/domain"
	"github.com/vbonduro/lunchroulette/internal/places"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// Wire shapes of the Places web service. Optional values are pointers so an
// absent rating is distinguishable from zero.
type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type nearbyResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Rating   *float64 `json:"rating,omitempty"`
	Types    []string `json:"types"`
	Vicinity string   `json:"vicinity"`
	Geometry struct {
		Location location `json:"location"`
	} `json:"geometry"`
	Photos []photo `json:"photos,omitempty"`
}

type nearbyResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Results      []nearbyResult `json:"results"`
}

type review struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
}

type detailResult struct {
	Name                 string   `json:"name"`
	Rating               *float64 `json:"rating,omitempty"`
	FormattedAddress     string   `json:"formatted_address"`
	FormattedPhoneNumber string   `json:"formatted_phone_number,omitempty"`
	Website              string   `json:"website,omitempty"`
	PriceLevel           *int     `json:"price_level,omitempty"`
	Types                []string `json:"types"`
	Photos               []photo  `json:"photos,omitempty"`
	Reviews              []review `json:"reviews,omitempty"`
	Vicinity             string   `json:"vicinity"`
}

type detailResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       detailResult `json:"result"`
}

// Client talks to the Google Maps web services with a server-side key.
type Client struct {
	apiKey   string
	language string
	client   *http.Client
	baseURL  string
}

func NewClient(apiKey, baseURL, language string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) NearbySearch(ctx context.Context, req places.NearbyRequest) (*places.NearbyResponse, error) {
	params := url.Values{}
	params.Set("location", formatLatLng(req.Location))
	params.Set("radius", strconv.Itoa(req.Radius))
	if req.Type != "" {
		params.Set("type", req.Type)
	}
	if req.Keyword != "" {
		params.Set("keyword", req.Keyword)
	}

	var body nearbyResponse
	if err := c.getJSON(ctx, "/place/nearbysearch/json", params, &body); err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	if body.ErrorMessage != "" {
		slog.Warn("nearby search returned error message", "status", body.Status, "error_message", body.ErrorMessage)
	}

	candidates := make([]domain.PlaceCandidate, 0, len(body.Results))
	for _, r := range body.Results {
		candidates = append(candidates, domain.PlaceCandidate{
			ID:       r.PlaceID,
			Name:     r.Name,
			Rating:   r.Rating,
			Types:    r.Types,
			Vicinity: r.Vicinity,
			Geometry: domain.GeoPoint{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Photos:   toPhotoRefs(r.Photos),
		})
	}
	return &places.NearbyResponse{Status: places.Status(body.Status), Candidates: candidates}, nil
}

func (c *Client) Details(ctx context.Context, req places.DetailRequest) (*places.DetailResponse, error) {
	params := url.Values{}
	params.Set("place_id", req.PlaceID)
	if len(req.Fields) > 0 {
		params.Set("fields", strings.Join(req.Fields, ","))
	}

	var body detailResponse
	if err := c.getJSON(ctx, "/place/details/json", params, &body); err != nil {
		return nil, fmt.Errorf("place details: %w", err)
	}

	r := body.Result
	reviews := make([]domain.Review, 0, len(r.Reviews))
	for _, rv := range r.Reviews {
		reviews = append(reviews, domain.Review{Author: rv.AuthorName, Rating: rv.Rating, Text: rv.Text})
	}
	return &places.DetailResponse{
		Status: places.Status(body.Status),
		Detail: domain.PlaceDetail{
			Name:             r.Name,
			Rating:           r.Rating,
			FormattedAddress: r.FormattedAddress,
			Phone:            r.FormattedPhoneNumber,
			Website:          r.Website,
			PriceLevel:       r.PriceLevel,
			Types:            r.Types,
			Photos:           toPhotoRefs(r.Photos),
			Reviews:          reviews,
			Vicinity:         r.Vicinity,
		},
	}, nil
}

// Photo streams a place photo. The caller must close the returned body.
func (c *Client) Photo(ctx context.Context, ref string, maxWidth int) (io.ReadCloser, string, error) {
	if ref == "" {
		return nil, "", fmt.Errorf("photo reference required")
	}
	params := url.Values{}
	params.Set("photo_reference", ref)
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	return c.getImage(ctx, "/place/photo", params)
}

// StaticMap streams a map image centered on center, with an optional marker.
func (c *Client) StaticMap(ctx context.Context, center domain.GeoPoint, marker *domain.GeoPoint) (io.ReadCloser, string, error) {
	params := url.Values{}
	params.Set("center", formatLatLng(center))
	params.Set("zoom", "16")
	params.Set("size", "640x400")
	if marker != nil {
		params.Set("markers", formatLatLng(*marker))
	}
	return c.getImage(ctx, "/staticmap", params)
}

func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, path, params)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call google places: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close places response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("google places returned status %d: %s", resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) getImage(ctx context.Context, path string, params url.Values) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, path, params)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("google maps returned status %d for %s", resp.StatusCode, path)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return resp.Body, mimeType, nil
}

func toPhotoRefs(in []photo) []domain.PhotoRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.PhotoRef, 0, len(in))
	for _, p := range in {
		out = append(out, domain.PhotoRef{Reference: p.PhotoReference, Width: p.Width, Height: p.Height})
	}
	return out
}

func formatLatLng(p domain.GeoPoint) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
