// Package maps defines the contract between the planning engines and a
// third-party mapping provider. Engines depend only on Provider; concrete
// vendors live in sub-packages.
package maps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Provider is the upstream mapping/directions/places service.
type Provider interface {
	// Ready reports whether the provider can serve requests. Engines poll it
	// on a fixed interval until it returns nil.
	Ready(ctx context.Context) error
	Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Prediction, error)
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*Place, error)
	Directions(ctx context.Context, req DirectionsRequest) (*Route, error)
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// String formats the coordinate the way provider query strings expect it.
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(l.Lng, 'f', 6, 64)
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (l LatLng) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLng{}, fmt.Errorf("invalid coordinate %q: expected lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	ll := LatLng{Lat: lat, Lng: lng}
	if !ll.Valid() {
		return LatLng{}, fmt.Errorf("coordinate %q out of range", s)
	}
	return ll, nil
}

// Location is either a free-text address or a coordinate. Coordinate wins
// when both are set.
type Location struct {
	Address    string
	Coordinate *LatLng
}

// String renders the location for a provider request.
func (l Location) String() string {
	if l.Coordinate != nil {
		return l.Coordinate.String()
	}
	return strings.TrimSpace(l.Address)
}

// IsZero reports whether the location carries nothing to geocode.
func (l Location) IsZero() bool {
	return l.Coordinate == nil && strings.TrimSpace(l.Address) == ""
}

// AutocompleteRequest is a type-ahead query restricted to a region and a set
// of place categories.
type AutocompleteRequest struct {
	Input        string
	Region       string   // ISO 3166-1 alpha-2 country code
	Types        []string // provider place types
	SessionToken string
}

// Prediction is a single autocomplete candidate.
type Prediction struct {
	PlaceID       string
	Description   string
	MainText      string
	SecondaryText string
	Types         []string
}

// Place is a provider place record as returned by a details lookup.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Location         *LatLng  `json:"location,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	OpeningHours     []string `json:"opening_hours,omitempty"`
	OpenNow          *bool    `json:"open_now,omitempty"`
	Types            []string `json:"types"`
	EditorialSummary string   `json:"editorial_summary,omitempty"`
	Photos           []Photo  `json:"photos,omitempty"`
}

// Photo references a provider-hosted image.
type Photo struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// DirectionsRequest asks for a driving route through ordered waypoints.
type DirectionsRequest struct {
	Origin            Location
	Destination       Location
	Waypoints         []Location
	OptimizeWaypoints bool
	Avoid             []string // e.g. "highways", "tolls"
	Region            string
}

// Route is a multi-leg directions result.
type Route struct {
	Summary          string
	Legs             []RouteLeg
	WaypointOrder    []int
	OverviewPolyline string
	Warnings         []string
}

// RouteLeg is the part of a route between two consecutive stops.
type RouteLeg struct {
	StartAddress    string
	EndAddress      string
	StartLocation   LatLng
	EndLocation     LatLng
	DistanceMeters  int
	DurationSeconds int
}
