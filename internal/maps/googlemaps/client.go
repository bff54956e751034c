// Package googlemaps implements maps.Provider on top of the Google Maps
// Platform JSON web services (Places Autocomplete, Place Details, Directions).
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Maps Platform web service root.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 10 * time.Second
	// DefaultRateLimit is requests per second across all endpoints
	DefaultRateLimit = rate.Limit(10)
	// MaxRetries for transient transport errors
	MaxRetries = 2
	// RetryBaseDelay is the initial backoff delay
	RetryBaseDelay = 500 * time.Millisecond
	// PhotoMaxWidth is the width requested for place photo URLs
	PhotoMaxWidth = 800
)

// Client talks to the Google Maps Platform web services.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	language       string
	limiter        *rate.Limiter
	retryBaseDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets a custom rate limit (requests per second).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryBaseDelay overrides the first retry delay.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = d
	}
}

// WithLanguage sets the response language (e.g. "en", "si").
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// NewClient creates a new Maps Platform client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		limiter:        rate.NewLimiter(DefaultRateLimit, 1),
		retryBaseDelay: RetryBaseDelay,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

var _ maps.Provider = (*Client)(nil)

// Ready fails permanently when no API key is configured; every web service
// call would be denied.
func (c *Client) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return &maps.StatusError{Op: "ready", Status: maps.StatusRequestDenied, Message: "no API key configured"}
	}
	return nil
}

// Autocomplete returns place predictions for input. ZERO_RESULTS yields an
// empty slice and no error.
func (c *Client) Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Prediction, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, fmt.Errorf("autocomplete input cannot be empty")
	}

	params := url.Values{}
	params.Set("input", input)
	if req.Region != "" {
		params.Set("components", "country:"+strings.ToLower(req.Region))
	}
	if len(req.Types) > 0 {
		params.Set("types", strings.Join(req.Types, "|"))
	}
	if req.SessionToken != "" {
		params.Set("sessiontoken", req.SessionToken)
	}

	var resp autocompleteResponse
	if err := c.get(ctx, "/place/autocomplete/json", params, &resp); err != nil {
		return nil, fmt.Errorf("places autocomplete: %w", err)
	}

	switch resp.Status {
	case maps.StatusOK:
	case maps.StatusZeroResults:
		return []maps.Prediction{}, nil
	default:
		return nil, &maps.StatusError{Op: "places autocomplete", Status: resp.Status, Message: resp.ErrorMessage}
	}

	predictions := make([]maps.Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		main := p.StructuredFormatting.MainText
		if main == "" {
			main = p.Description
		}
		predictions = append(predictions, maps.Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      main,
			SecondaryText: p.StructuredFormatting.SecondaryText,
			Types:         p.Types,
		})
	}
	return predictions, nil
}

// PlaceDetails fetches the requested fields of one place.
func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields []string) (*maps.Place, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, fmt.Errorf("place id cannot be empty")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var resp detailsResponse
	if err := c.get(ctx, "/place/details/json", params, &resp); err != nil {
		return nil, fmt.Errorf("place details: %w", err)
	}
	if resp.Status != maps.StatusOK {
		return nil, &maps.StatusError{Op: "place details", Status: resp.Status, Message: resp.ErrorMessage}
	}

	r := resp.Result
	place := &maps.Place{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		Types:            r.Types,
	}
	if place.PlaceID == "" {
		place.PlaceID = placeID
	}
	if r.Geometry != nil {
		place.Location = &maps.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
	}
	if r.OpeningHours != nil {
		place.OpeningHours = r.OpeningHours.WeekdayText
		place.OpenNow = r.OpeningHours.OpenNow
	}
	if r.EditorialSummary != nil {
		place.EditorialSummary = r.EditorialSummary.Overview
	}
	for _, p := range r.Photos {
		place.Photos = append(place.Photos, maps.Photo{
			Reference: p.PhotoReference,
			URL:       c.photoURL(p.PhotoReference),
			Width:     p.Width,
			Height:    p.Height,
		})
	}
	return place, nil
}

// Directions requests a driving route through the given waypoints.
func (c *Client) Directions(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
	if req.Origin.IsZero() || req.Destination.IsZero() {
		return nil, fmt.Errorf("directions: origin and destination are required")
	}

	params := url.Values{}
	params.Set("origin", req.Origin.String())
	params.Set("destination", req.Destination.String())
	params.Set("mode", "driving")
	params.Set("units", "metric")
	if req.Region != "" {
		params.Set("region", strings.ToLower(req.Region))
	}
	if len(req.Waypoints) > 0 {
		waypoints := make([]string, 0, len(req.Waypoints)+1)
		if req.OptimizeWaypoints {
			waypoints = append(waypoints, "optimize:true")
		}
		for _, wp := range req.Waypoints {
			waypoints = append(waypoints, wp.String())
		}
		params.Set("waypoints", strings.Join(waypoints, "|"))
	}
	if len(req.Avoid) > 0 {
		params.Set("avoid", strings.Join(req.Avoid, "|"))
	}

	var resp directionsResponse
	if err := c.get(ctx, "/directions/json", params, &resp); err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	if resp.Status != maps.StatusOK {
		return nil, &maps.StatusError{Op: "directions", Status: resp.Status, Message: resp.ErrorMessage}
	}
	if len(resp.Routes) == 0 {
		return nil, &maps.StatusError{Op: "directions", Status: maps.StatusZeroResults, Message: "no routes in response"}
	}

	r := resp.Routes[0]
	out := &maps.Route{
		Summary:          r.Summary,
		WaypointOrder:    r.WaypointOrder,
		OverviewPolyline: r.OverviewPolyline.Points,
		Warnings:         r.Warnings,
		Legs:             make([]maps.RouteLeg, 0, len(r.Legs)),
	}
	for _, l := range r.Legs {
		out.Legs = append(out.Legs, maps.RouteLeg{
			StartAddress:    l.StartAddress,
			EndAddress:      l.EndAddress,
			StartLocation:   maps.LatLng{Lat: l.StartLocation.Lat, Lng: l.StartLocation.Lng},
			EndLocation:     maps.LatLng{Lat: l.EndLocation.Lat, Lng: l.EndLocation.Lng},
			DistanceMeters:  l.Distance.Value,
			DurationSeconds: l.Duration.Value,
		})
	}
	return out, nil
}

func (c *Client) photoURL(reference string) string {
	if reference == "" {
		return ""
	}
	params := url.Values{}
	params.Set("maxwidth", fmt.Sprintf("%d", PhotoMaxWidth))
	params.Set("photo_reference", reference)
	params.Set("key", c.apiKey)
	return fmt.Sprintf("%s/place/photo?%s", c.baseURL, params.Encode())
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	return c.doWithRetry(ctx, requestURL, result)
}

// doWithRetry executes an HTTP GET request with exponential backoff retry logic.
// Only transport failures, 429 and 5xx are retried; API-level statuses in the
// body are left to the caller.
func (c *Client) doWithRetry(ctx context.Context, requestURL string, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBaseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &maps.StatusError{Op: "http", Status: maps.StatusOverQueryLimit, Message: "rate limited (429)"}
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (%d)", resp.StatusCode)
			continue
		}

		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
			return &maps.StatusError{Op: "http", Status: maps.StatusRequestDenied, Message: http.StatusText(resp.StatusCode)}
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
