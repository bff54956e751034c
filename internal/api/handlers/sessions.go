package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/api/problem"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/planner"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// SessionsHandler exposes stateful planner sessions. Each session keeps its
// own route engine and discovery input, so a client editing a trip gets the
// same last-request-wins and dropdown behaviour as the in-app planner.
type SessionsHandler struct {
	Registry *planner.Registry
	Env      string
}

func NewSessionsHandler(reg *planner.Registry, env string) *SessionsHandler {
	return &SessionsHandler{Registry: reg, Env: env}
}

// RouteStateBody is the JSON form of a session's route.
type RouteStateBody struct {
	Status   routeplan.Status  `json:"status"`
	Sequence uint64            `json:"sequence"`
	Request  routeplan.Request `json:"request"`
	Route    *routeplan.View   `json:"route"`
	Error    *RouteErrorBody   `json:"error,omitempty"`
}

func newRouteStateBody(state planner.RouteState) RouteStateBody {
	return RouteStateBody{
		Status:   state.Status,
		Sequence: state.Sequence,
		Request:  state.Request,
		Route:    state.Route,
		Error:    newRouteErrorBody(state.Err),
	}
}

// SessionBody is the JSON form of a whole planner session.
type SessionBody struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Route     RouteStateBody      `json:"route"`
	Places    planner.PlacesState `json:"places"`
}

// InputBody is new text typed into the place search box.
type InputBody struct {
	Text string `json:"text" validate:"max=200"`
	// Immediate skips the debounce and returns the resulting suggestions.
	Immediate bool `json:"immediate,omitempty"`
}

// KeyBody is one keyboard action on the suggestion dropdown, or
// "click_outside" for a pointer press outside it.
type KeyBody struct {
	Key string `json:"key" validate:"required,oneof=down up enter escape click_outside"`
}

// SelectBody picks one of the currently shown suggestions.
type SelectBody struct {
	ID string `json:"id" validate:"required,max=300"`
}

// SelectionBody is the outcome of a selection.
type SelectionBody struct {
	Place  *discovery.PlaceDetails `json:"place"`
	Places planner.PlacesState     `json:"places"`
}

// Create handles POST /api/v1/planner/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.Registry.Create()
	if err != nil {
		writeCommonError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Location", "/api/v1/planner/sessions/"+s.ID)
	writeJSON(w, http.StatusCreated, SessionBody{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Route:     newRouteStateBody(s.RouteState()),
		Places:    s.PlacesState(),
	})
}

// Delete handles DELETE /api/v1/planner/sessions/{id}.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Delete(pathParam(r, "id")); err != nil {
		writeCommonError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutRoute handles PUT /api/v1/planner/sessions/{id}/route. A blank origin
// or destination clears the route. A request overtaken by a newer PUT for the
// same session gets 409.
func (h *SessionsHandler) PutRoute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body RouteBody
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}

	if _, err := s.Route(r.Context(), body.request()); err != nil {
		writeRouteError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newRouteStateBody(s.RouteState()))
}

// GetRoute handles GET /api/v1/planner/sessions/{id}/route.
func (h *SessionsHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRouteStateBody(s.RouteState()))
}

// PutInput handles PUT /api/v1/planner/sessions/{id}/places/input. The
// query is debounced and 202 returned unless immediate is set, in which case
// the suggestions are fetched before responding.
func (h *SessionsHandler) PutInput(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body InputBody
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}

	if !body.Immediate {
		s.Places().Input(body.Text)
		writeJSON(w, http.StatusAccepted, s.PlacesState())
		return
	}
	if _, err := s.Places().Search(r.Context(), body.Text); err != nil {
		writePlacesError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, s.PlacesState())
}

// GetPlaces handles GET /api/v1/planner/sessions/{id}/places.
func (h *SessionsHandler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.PlacesState())
}

// keyClickOutside closes the dropdown and keeps text and suggestions.
const keyClickOutside = "click_outside"

// PostKey handles POST /api/v1/planner/sessions/{id}/places/keys. Enter on a
// highlighted suggestion selects it.
func (h *SessionsHandler) PostKey(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body KeyBody
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if body.Key == keyClickOutside {
		s.Places().ClickOutside()
		writeJSON(w, http.StatusOK, SelectionBody{Places: s.PlacesState()})
		return
	}
	key, _ := discovery.ParseKey(body.Key)

	details, err := s.Places().Key(r.Context(), key)
	if err != nil {
		writePlacesError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, SelectionBody{Place: details, Places: s.PlacesState()})
}

// PostSelect handles POST /api/v1/planner/sessions/{id}/places/select. Only
// a suggestion currently shown can be selected.
func (h *SessionsHandler) PostSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body SelectBody
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}

	var chosen *discovery.Suggestion
	for _, sug := range s.Places().Snapshot().Suggestions {
		if sug.ID == body.ID {
			chosen = &sug
			break
		}
	}
	if chosen == nil {
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Unknown suggestion",
			errors.New("suggestion is not currently shown"), h.Env,
			problem.WithDetail("That place is no longer in the suggestions. Search again."))
		return
	}

	details, err := s.Places().Select(r.Context(), *chosen)
	if err != nil {
		writePlacesError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, SelectionBody{Place: details, Places: s.PlacesState()})
}

func (h *SessionsHandler) session(w http.ResponseWriter, r *http.Request) (*planner.Session, bool) {
	s, err := h.Registry.Get(pathParam(r, "id"))
	if err != nil {
		writeCommonError(w, r, err, h.Env)
		return nil, false
	}
	return s, true
}
