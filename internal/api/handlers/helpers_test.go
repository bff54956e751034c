package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps/mapstest"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/planner"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

const testEnv = "test"

type fixture struct {
	fake      *mapstest.Fake
	readiness *maps.Readiness
	planner   *routeplan.Planner
	discovery *discovery.Service
	registry  *planner.Registry
	mux       *http.ServeMux
}

// newFixture wires every handler onto a plain mux backed by fake. The
// readiness tracker is ready before it returns unless fake.ReadyFunc says
// otherwise.
func newFixture(t *testing.T, fake *mapstest.Fake) *fixture {
	t.Helper()

	readiness := maps.StartReadiness(context.Background(), fake, time.Millisecond, 3, zerolog.Nop())
	t.Cleanup(readiness.Close)
	if fake.ReadyFunc == nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, readiness.Wait(ctx))
	}

	p := routeplan.NewPlanner(fake, routeplan.Options{}, zerolog.Nop())
	svc := discovery.NewService(fake, nil, discovery.Options{Debounce: 5 * time.Millisecond}, zerolog.Nop())
	reg := planner.NewRegistry(p, svc, readiness, planner.Options{}, zerolog.Nop())
	t.Cleanup(reg.Close)

	routes := NewRoutesHandler(p, readiness, testEnv)
	places := NewPlacesHandler(svc, testEnv)
	sessions := NewSessionsHandler(reg, testEnv)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /routes", routes.Compute)
	mux.HandleFunc("POST /routes/compare", routes.Compare)
	mux.HandleFunc("GET /places/autocomplete", places.Autocomplete)
	mux.HandleFunc("GET /places/{id}", places.Get)
	mux.HandleFunc("POST /sessions", sessions.Create)
	mux.HandleFunc("DELETE /sessions/{id}", sessions.Delete)
	mux.HandleFunc("GET /sessions/{id}/route", sessions.GetRoute)
	mux.HandleFunc("PUT /sessions/{id}/route", sessions.PutRoute)
	mux.HandleFunc("GET /sessions/{id}/places", sessions.GetPlaces)
	mux.HandleFunc("PUT /sessions/{id}/places/input", sessions.PutInput)
	mux.HandleFunc("POST /sessions/{id}/places/keys", sessions.PostKey)
	mux.HandleFunc("POST /sessions/{id}/places/select", sessions.PostSelect)

	return &fixture{
		fake:      fake,
		readiness: readiness,
		planner:   p,
		discovery: svc,
		registry:  reg,
		mux:       mux,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem.ProblemDetails {
	t.Helper()
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	return decodeBody[problem.ProblemDetails](t, rec)
}

func colomboToKandy() map[string]any {
	return map[string]any{
		"origin":      map[string]any{"label": "Colombo"},
		"destination": map[string]any{"label": "Kandy"},
	}
}

func predictions(texts ...string) []maps.Prediction {
	out := make([]maps.Prediction, 0, len(texts))
	for _, text := range texts {
		out = append(out, maps.Prediction{
			PlaceID:       "id-" + text,
			Description:   text + ", Sri Lanka",
			MainText:      text,
			SecondaryText: "Sri Lanka",
		})
	}
	return out
}
