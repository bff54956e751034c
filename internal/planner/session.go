// Package planner hosts the stateful trip planner sessions used by the HTTP
// API. A session is the server-side stand-in for one open planner screen: it
// owns one route engine and one place discovery session and hands selected
// places from discovery to the caller. The engines never talk to each other.
package planner

import (
	"context"
	"sync"
	"time"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// Session is one open trip planner.
type Session struct {
	ID        string
	CreatedAt time.Time

	route  *routeplan.Engine
	places *discovery.Session

	mu       sync.Mutex
	lastSeen time.Time
	request  routeplan.Request
	selected []*discovery.PlaceDetails
}

// RouteState is what the planner's map currently shows.
type RouteState struct {
	Status   routeplan.Status  `json:"status"`
	Sequence uint64            `json:"sequence"`
	Request  routeplan.Request `json:"request"`
	Route    *routeplan.View   `json:"route"`
	Err      error             `json:"-"`
}

// PlacesState is the discovery input plus the places added to the trip.
type PlacesState struct {
	discovery.Snapshot
	Selected []*discovery.PlaceDetails `json:"selected"`
}

// Route recomputes the route for req. Results follow the engine's
// last-request-wins rule, so the returned error may be
// routeplan.ErrSuperseded when a newer update overtook this one.
func (s *Session) Route(ctx context.Context, req routeplan.Request) (*routeplan.View, error) {
	s.mu.Lock()
	s.request = req
	s.mu.Unlock()
	return s.route.Compute(ctx, req)
}

// RouteState returns the currently displayed route.
func (s *Session) RouteState() RouteState {
	snap := s.route.Snapshot()
	s.mu.Lock()
	req := s.request
	s.mu.Unlock()
	return RouteState{
		Status:   snap.Status,
		Sequence: snap.Sequence,
		Request:  req,
		Route:    snap.View,
		Err:      snap.Err,
	}
}

// Places exposes the discovery session.
func (s *Session) Places() *discovery.Session {
	return s.places
}

// PlacesState returns the discovery snapshot and the selected places, oldest
// first.
func (s *Session) PlacesState() PlacesState {
	snap := s.places.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := make([]*discovery.PlaceDetails, len(s.selected))
	copy(selected, s.selected)
	return PlacesState{Snapshot: snap, Selected: selected}
}

func (s *Session) addPlace(details *discovery.PlaceDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = append(s.selected, details)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) close() {
	s.places.Close()
	s.route.Close()
}
