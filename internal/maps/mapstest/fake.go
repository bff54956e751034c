// Package mapstest provides an in-memory maps.Provider for tests.
package mapstest

import (
	"context"
	"sync"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// Fake is a scriptable maps.Provider. Each hook may be nil, in which case the
// call succeeds with an empty value. Calls are recorded for assertions.
type Fake struct {
	ReadyFunc        func(ctx context.Context) error
	AutocompleteFunc func(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Prediction, error)
	DetailsFunc      func(ctx context.Context, placeID string, fields []string) (*maps.Place, error)
	DirectionsFunc   func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error)

	mu                 sync.Mutex
	readyCalls         int
	autocompleteCalls  []maps.AutocompleteRequest
	detailsCalls       []string
	directionsRequests []maps.DirectionsRequest
}

var _ maps.Provider = (*Fake)(nil)

func (f *Fake) Ready(ctx context.Context) error {
	f.mu.Lock()
	f.readyCalls++
	f.mu.Unlock()
	if f.ReadyFunc != nil {
		return f.ReadyFunc(ctx)
	}
	return nil
}

func (f *Fake) Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Prediction, error) {
	f.mu.Lock()
	f.autocompleteCalls = append(f.autocompleteCalls, req)
	f.mu.Unlock()
	if f.AutocompleteFunc != nil {
		return f.AutocompleteFunc(ctx, req)
	}
	return []maps.Prediction{}, nil
}

func (f *Fake) PlaceDetails(ctx context.Context, placeID string, fields []string) (*maps.Place, error) {
	f.mu.Lock()
	f.detailsCalls = append(f.detailsCalls, placeID)
	f.mu.Unlock()
	if f.DetailsFunc != nil {
		return f.DetailsFunc(ctx, placeID, fields)
	}
	return &maps.Place{PlaceID: placeID}, nil
}

func (f *Fake) Directions(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
	f.mu.Lock()
	f.directionsRequests = append(f.directionsRequests, req)
	f.mu.Unlock()
	if f.DirectionsFunc != nil {
		return f.DirectionsFunc(ctx, req)
	}
	return StraightRoute(req), nil
}

// ReadyCalls returns how many times Ready was called.
func (f *Fake) ReadyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readyCalls
}

// AutocompleteCalls returns a copy of the recorded autocomplete requests.
func (f *Fake) AutocompleteCalls() []maps.AutocompleteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]maps.AutocompleteRequest(nil), f.autocompleteCalls...)
}

// DetailsCalls returns the place ids passed to PlaceDetails.
func (f *Fake) DetailsCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.detailsCalls...)
}

// DirectionsRequests returns a copy of the recorded directions requests.
func (f *Fake) DirectionsRequests() []maps.DirectionsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]maps.DirectionsRequest(nil), f.directionsRequests...)
}

// StraightRoute builds a route visiting the waypoints in request order with
// one leg per hop, each 10 km and 15 minutes.
func StraightRoute(req maps.DirectionsRequest) *maps.Route {
	stops := make([]maps.Location, 0, len(req.Waypoints)+2)
	stops = append(stops, req.Origin)
	stops = append(stops, req.Waypoints...)
	stops = append(stops, req.Destination)

	route := &maps.Route{Summary: "fake"}
	for i := range req.Waypoints {
		route.WaypointOrder = append(route.WaypointOrder, i)
	}
	for i := 0; i+1 < len(stops); i++ {
		route.Legs = append(route.Legs, maps.RouteLeg{
			StartAddress:    stops[i].String(),
			EndAddress:      stops[i+1].String(),
			DistanceMeters:  10000,
			DurationSeconds: 900,
		})
	}
	return route
}
