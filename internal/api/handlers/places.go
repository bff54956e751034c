package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
)

const maxQueryLength = 200

// PlacesHandler serves stateless place search.
type PlacesHandler struct {
	Service *discovery.Service
	Env     string
}

func NewPlacesHandler(svc *discovery.Service, env string) *PlacesHandler {
	return &PlacesHandler{Service: svc, Env: env}
}

// Autocomplete handles GET /api/v1/places/autocomplete.
// Query params:
//   - q: free text typed by the traveller; blank returns no suggestions
//   - session: optional provider session token grouping one search
func (h *PlacesHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) > maxQueryLength {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("query parameter 'q' is too long"), h.Env,
			problem.WithErrors(map[string]interface{}{"q": "must be at most 200 characters"}))
		return
	}
	token := strings.TrimSpace(r.URL.Query().Get("session"))

	suggestions, err := h.Service.Autocomplete(r.Context(), query, token)
	if err != nil {
		writePlacesError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// Get handles GET /api/v1/places/{id}: the enriched details of one place.
func (h *PlacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request",
			errors.New("place id is required"), h.Env)
		return
	}

	details, err := h.Service.Resolve(r.Context(), id)
	if err != nil {
		writePlacesError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
