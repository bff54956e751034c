package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps/mapstest"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

type viewBody struct {
	Result struct {
		DistanceMeters  int    `json:"distanceMeters"`
		DurationSeconds int    `json:"durationSeconds"`
		Distance        string `json:"distance"`
		Duration        string `json:"duration"`
		Preference      string `json:"preference"`
		WaypointCount   int    `json:"waypointCount"`
	} `json:"result"`
	Markers []struct {
		Label string `json:"label"`
		Kind  string `json:"kind"`
	} `json:"markers"`
	Path struct {
		Color string `json:"color"`
	} `json:"path"`
}

func TestRoutes_Compute(t *testing.T) {
	f := newFixture(t, &mapstest.Fake{})

	body := colomboToKandy()
	body["waypoints"] = []map[string]any{{"label": "Kegalle"}}
	rec := f.do(t, http.MethodPost, "/routes", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeBody[viewBody](t, rec)
	assert.Equal(t, 20000, view.Result.DistanceMeters)
	assert.Equal(t, "20.0 km", view.Result.Distance)
	assert.Equal(t, "recommended", view.Result.Preference)
	assert.Equal(t, 1, view.Result.WaypointCount)
	require.Len(t, view.Markers, 3)
	assert.Equal(t, "A", view.Markers[0].Label)
	assert.Equal(t, "1", view.Markers[1].Label)
	assert.Equal(t, "B", view.Markers[2].Label)

	reqs := f.fake.DirectionsRequests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].OptimizeWaypoints, "recommended keeps the traveller's order")
}

func TestRoutes_ComputePreference(t *testing.T) {
	f := newFixture(t, &mapstest.Fake{})

	body := colomboToKandy()
	body["preference"] = "scenic"
	rec := f.do(t, http.MethodPost, "/routes", body)

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[viewBody](t, rec)
	assert.Equal(t, "scenic", view.Result.Preference)
	assert.Equal(t, routeplan.Scenic.Color(), view.Path.Color)

	reqs := f.fake.DirectionsRequests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Avoid, "highways")
}

func TestRoutes_ComputeValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      any
		wantField string
	}{
		{
			name:      "unknown preference",
			body:      map[string]any{"origin": map[string]any{"label": "A"}, "destination": map[string]any{"label": "B"}, "preference": "fastest"},
			wantField: "preference",
		},
		{
			name: "latitude out of range",
			body: map[string]any{
				"origin":      map[string]any{"coordinate": map[string]any{"lat": 91, "lng": 80}},
				"destination": map[string]any{"label": "B"},
			},
			wantField: "origin.coordinate.lat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &mapstest.Fake{})
			rec := f.do(t, http.MethodPost, "/routes", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			p := decodeProblem(t, rec)
			assert.Contains(t, p.Errors, tt.wantField)
			assert.Empty(t, f.fake.DirectionsRequests())
		})
	}
}

func TestRoutes_ComputeRejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "not json", body: "{"},
		{name: "unknown field", body: `{"origin":{"label":"A"},"destination":{"label":"B"},"mode":"walk"}`},
		{name: "two documents", body: `{"origin":{"label":"A"},"destination":{"label":"B"}}{}`},
		{name: "missing destination", body: `{"origin":{"label":"A"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &mapstest.Fake{})
			rec := f.do(t, http.MethodPost, "/routes", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.fake.DirectionsRequests())
		})
	}
}

func TestRoutes_ComputeProviderFailures(t *testing.T) {
	tests := []struct {
		status     string
		wantCode   int
		wantKind   routeplan.Kind
		retryAfter bool
	}{
		{status: maps.StatusNotFound, wantCode: http.StatusUnprocessableEntity, wantKind: routeplan.KindLocationNotFound},
		{status: maps.StatusZeroResults, wantCode: http.StatusUnprocessableEntity, wantKind: routeplan.KindNoRouteFound},
		{status: maps.StatusMaxWaypointsExceeded, wantCode: http.StatusUnprocessableEntity, wantKind: routeplan.KindTooManyWaypoints},
		{status: maps.StatusOverQueryLimit, wantCode: http.StatusTooManyRequests, wantKind: routeplan.KindRateLimited, retryAfter: true},
		{status: maps.StatusRequestDenied, wantCode: http.StatusBadGateway, wantKind: routeplan.KindRequestDenied},
		{status: "SOMETHING_NEW", wantCode: http.StatusBadGateway, wantKind: routeplan.KindUnknownProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f := newFixture(t, &mapstest.Fake{
				DirectionsFunc: func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
					return nil, &maps.StatusError{Op: "directions", Status: tt.status}
				},
			})

			rec := f.do(t, http.MethodPost, "/routes", colomboToKandy())

			require.Equal(t, tt.wantCode, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, string(tt.wantKind), p.Code)
			assert.NotEmpty(t, p.Detail)
			require.NotNil(t, p.Retry)
			if tt.retryAfter {
				assert.Equal(t, "5", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRoutes_ComputeTooManyWaypointsNeverReachesProvider(t *testing.T) {
	f := newFixture(t, &mapstest.Fake{})

	body := colomboToKandy()
	waypoints := make([]map[string]any, routeplan.DefaultMaxWaypoints+1)
	for i := range waypoints {
		waypoints[i] = map[string]any{"label": "Stop"}
	}
	body["waypoints"] = waypoints

	rec := f.do(t, http.MethodPost, "/routes", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(routeplan.KindTooManyWaypoints), decodeProblem(t, rec).Code)
	assert.Empty(t, f.fake.DirectionsRequests())
}

func TestRoutes_ProviderNeverReady(t *testing.T) {
	f := newFixture(t, &mapstest.Fake{
		ReadyFunc: func(ctx context.Context) error { return maps.ErrNotReady },
	})

	rec := f.do(t, http.MethodPost, "/routes", colomboToKandy())

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(routeplan.KindProviderNotReady), decodeProblem(t, rec).Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Empty(t, f.fake.DirectionsRequests())
}

func TestRoutes_ProviderDenied(t *testing.T) {
	f := newFixture(t, &mapstest.Fake{
		ReadyFunc: func(ctx context.Context) error {
			return &maps.StatusError{Op: "ready", Status: maps.StatusRequestDenied}
		},
	})

	rec := f.do(t, http.MethodPost, "/routes", colomboToKandy())

	require.Equal(t, http.StatusBadGateway, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, string(routeplan.KindRequestDenied), p.Code)
	require.NotNil(t, p.Retry)
	assert.False(t, *p.Retry)
}

func TestRoutes_Compare(t *testing.T) {
	f := newFixture(t, &mapstest.Fake{
		DirectionsFunc: func(ctx context.Context, req maps.DirectionsRequest) (*maps.Route, error) {
			if len(req.Avoid) > 0 {
				return nil, &maps.StatusError{Op: "directions", Status: maps.StatusZeroResults}
			}
			return mapstest.StraightRoute(req), nil
		},
	})

	rec := f.do(t, http.MethodPost, "/routes/compare", colomboToKandy())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[struct {
		Routes []struct {
			Preference string          `json:"preference"`
			Route      *viewBody       `json:"route"`
			Error      *RouteErrorBody `json:"error"`
		} `json:"routes"`
	}](t, rec)

	require.Len(t, resp.Routes, len(routeplan.Preferences))
	byPref := map[string]int{}
	for i, entry := range resp.Routes {
		byPref[entry.Preference] = i
	}

	recommended := resp.Routes[byPref["recommended"]]
	require.NotNil(t, recommended.Route)
	assert.Nil(t, recommended.Error)

	scenic := resp.Routes[byPref["scenic"]]
	assert.Nil(t, scenic.Route)
	require.NotNil(t, scenic.Error)
	assert.Equal(t, string(routeplan.KindNoRouteFound), scenic.Error.Code)
	assert.False(t, scenic.Error.Retryable)
}

func TestNewRouteErrorBody(t *testing.T) {
	assert.Nil(t, newRouteErrorBody(nil))

	body := newRouteErrorBody(&routeplan.RouteError{Kind: routeplan.KindRateLimited})
	require.NotNil(t, body)
	assert.Equal(t, "rate_limited", body.Code)
	assert.True(t, body.Retryable)

	body = newRouteErrorBody(errors.New("boom"))
	require.NotNil(t, body)
	assert.Equal(t, "unknown", body.Code)
}
