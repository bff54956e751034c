package handlers

import (
	"errors"
	"net/http"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

type coordinateBody struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type stopBody struct {
	Label      string          `json:"label,omitempty" validate:"max=200"`
	Address    string          `json:"address,omitempty" validate:"max=500"`
	Coordinate *coordinateBody `json:"coordinate,omitempty"`
}

func (b stopBody) stop() routeplan.Stop {
	s := routeplan.Stop{Label: b.Label, Address: b.Address}
	if b.Coordinate != nil {
		s.Coordinate = &maps.LatLng{Lat: b.Coordinate.Lat, Lng: b.Coordinate.Lng}
	}
	return s
}

// RouteBody is the JSON form of a route request. The waypoint cap only
// bounds the payload; the planner enforces the provider's own limit with a
// typed error.
type RouteBody struct {
	Origin      stopBody   `json:"origin"`
	Destination stopBody   `json:"destination"`
	Waypoints   []stopBody `json:"waypoints,omitempty" validate:"max=100,dive"`
	Preference  string     `json:"preference,omitempty" validate:"omitempty,oneof=recommended shortest scenic"`
}

func (b RouteBody) request() routeplan.Request {
	req := routeplan.Request{
		Origin:      b.Origin.stop(),
		Destination: b.Destination.stop(),
	}
	for _, wp := range b.Waypoints {
		req.Waypoints = append(req.Waypoints, wp.stop())
	}
	// Validation already restricted the value; empty means recommended.
	req.Preference, _ = routeplan.ParsePreference(b.Preference)
	return req
}

// RoutesHandler serves stateless route computations.
type RoutesHandler struct {
	Planner   *routeplan.Planner
	Readiness *maps.Readiness
	Env       string
}

func NewRoutesHandler(p *routeplan.Planner, readiness *maps.Readiness, env string) *RoutesHandler {
	return &RoutesHandler{Planner: p, Readiness: readiness, Env: env}
}

// Compute handles POST /api/v1/routes.
func (h *RoutesHandler) Compute(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComplete(w, r)
	if !ok {
		return
	}
	if !providerReady(w, r, h.Readiness, h.Env) {
		return
	}

	view, err := h.Planner.Compute(r.Context(), req)
	if err != nil {
		writeRouteError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ComparisonEntry is one preference's outcome in a comparison.
type ComparisonEntry struct {
	Preference routeplan.Preference `json:"preference"`
	Route      *routeplan.View      `json:"route,omitempty"`
	Error      *RouteErrorBody      `json:"error,omitempty"`
}

// RouteErrorBody is a route failure embedded in a successful response.
type RouteErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func newRouteErrorBody(err error) *RouteErrorBody {
	if err == nil {
		return nil
	}
	if re, ok := routeplan.AsRouteError(err); ok {
		return &RouteErrorBody{Code: string(re.Kind), Message: re.UserMessage(), Retryable: re.Retryable()}
	}
	return &RouteErrorBody{Code: "unknown", Message: "Something went wrong while planning your route.", Retryable: true}
}

// Compare handles POST /api/v1/routes/compare: the same stops under every
// preference. One preference failing does not fail the response.
func (h *RoutesHandler) Compare(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComplete(w, r)
	if !ok {
		return
	}
	if !providerReady(w, r, h.Readiness, h.Env) {
		return
	}

	cmp, err := h.Planner.Compare(r.Context(), req)
	if err != nil {
		writeCommonError(w, r, err, h.Env)
		return
	}

	entries := make([]ComparisonEntry, 0, len(routeplan.Preferences))
	for _, pref := range routeplan.Preferences {
		entries = append(entries, ComparisonEntry{
			Preference: pref,
			Route:      cmp.Views[pref],
			Error:      newRouteErrorBody(cmp.Errors[pref]),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": entries})
}

func (h *RoutesHandler) decodeComplete(w http.ResponseWriter, r *http.Request) (routeplan.Request, bool) {
	var body RouteBody
	if !decodeJSON(w, r, &body, h.Env) {
		return routeplan.Request{}, false
	}
	req := body.request()
	if !req.Complete() {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("origin and destination are required"), h.Env,
			problem.WithDetail("Both origin and destination are required."))
		return routeplan.Request{}, false
	}
	return req, true
}

// providerReady waits, bounded by the request context, for the maps
// provider to finish loading. A nil tracker always passes.
func providerReady(w http.ResponseWriter, r *http.Request, readiness *maps.Readiness, env string) bool {
	if readiness == nil || readiness.State() == maps.StateReady {
		return true
	}
	err := readiness.Wait(r.Context())
	switch {
	case err == nil:
		return true
	case r.Context().Err() != nil:
		writeCommonError(w, r, err, env)
	case maps.StatusOf(err) == maps.StatusRequestDenied:
		writeRouteError(w, r, &routeplan.RouteError{Kind: routeplan.KindRequestDenied, Status: maps.StatusRequestDenied, Err: err}, env)
	default:
		writeRouteError(w, r, &routeplan.RouteError{Kind: routeplan.KindProviderNotReady, Err: err}, env)
	}
	return false
}
