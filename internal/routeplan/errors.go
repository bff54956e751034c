package routeplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// Kind classifies a route failure.
type Kind string

const (
	KindLocationNotFound     Kind = "location_not_found"
	KindNoRouteFound         Kind = "no_route_found"
	KindTooManyWaypoints     Kind = "too_many_waypoints"
	KindRateLimited          Kind = "rate_limited"
	KindRequestDenied        Kind = "request_denied"
	KindProviderNotReady     Kind = "provider_not_ready"
	KindUnknownProviderError Kind = "unknown_provider_error"
)

// Category groups kinds by how callers should react.
type Category string

const (
	// CategoryTransient failures may succeed if re-triggered unchanged.
	CategoryTransient Category = "transient"
	// CategoryStructural failures need a different request.
	CategoryStructural Category = "structural"
	// CategoryPermission failures are deployment problems, not user errors.
	CategoryPermission Category = "permission"
)

var (
	ErrLocationNotFound     = errors.New("one or more stops could not be found")
	ErrNoRouteFound         = errors.New("no drivable route between the stops")
	ErrTooManyWaypoints     = errors.New("too many waypoints")
	ErrRateLimited          = errors.New("route provider is rate limiting requests")
	ErrRequestDenied        = errors.New("route provider denied the request")
	ErrProviderNotReady     = errors.New("route provider is not ready")
	ErrUnknownProviderError = errors.New("route provider error")

	// ErrSuperseded is returned for a computation whose result was discarded
	// because a newer request was issued after it.
	ErrSuperseded = errors.New("route request superseded by a newer request")

	// ErrEngineClosed is returned by Compute after Close.
	ErrEngineClosed = errors.New("route engine closed")
)

var sentinels = map[Kind]error{
	KindLocationNotFound:     ErrLocationNotFound,
	KindNoRouteFound:         ErrNoRouteFound,
	KindTooManyWaypoints:     ErrTooManyWaypoints,
	KindRateLimited:          ErrRateLimited,
	KindRequestDenied:        ErrRequestDenied,
	KindProviderNotReady:     ErrProviderNotReady,
	KindUnknownProviderError: ErrUnknownProviderError,
}

// RouteError is a typed route failure. Status carries the raw provider
// status for diagnostics; for KindUnknownProviderError it is the code.
type RouteError struct {
	Kind   Kind
	Status string
	Err    error
}

func (e *RouteError) Error() string {
	msg := sentinels[e.Kind].Error()
	if e.Status != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *RouteError) Unwrap() []error {
	errs := []error{sentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Category returns the retry category of the failure.
func (e *RouteError) Category() Category {
	switch e.Kind {
	case KindLocationNotFound, KindNoRouteFound, KindTooManyWaypoints:
		return CategoryStructural
	case KindRequestDenied:
		return CategoryPermission
	default:
		return CategoryTransient
	}
}

// Retryable reports whether re-triggering the same request may succeed.
func (e *RouteError) Retryable() bool {
	return e.Category() == CategoryTransient
}

// UserMessage is the single message shown for this kind of failure.
func (e *RouteError) UserMessage() string {
	switch e.Kind {
	case KindLocationNotFound:
		return "We couldn't find one of your stops. Check the spelling or pick it from the suggestions."
	case KindNoRouteFound:
		return "There is no drivable route between these stops."
	case KindTooManyWaypoints:
		return "This trip has too many stops. Remove some stops and try again."
	case KindRateLimited:
		return "Route planning is busy right now. Please try again in a moment."
	case KindRequestDenied:
		return "Route planning is unavailable. Please contact support."
	case KindProviderNotReady:
		return "Maps are still loading. Please try again shortly."
	default:
		return "Something went wrong while planning your route. Please try again."
	}
}

// UnknownProviderError builds the catch-all error for a raw provider code.
func UnknownProviderError(code string) *RouteError {
	return &RouteError{Kind: KindUnknownProviderError, Status: code}
}

// AsRouteError returns the *RouteError in err's chain, if any.
func AsRouteError(err error) (*RouteError, bool) {
	var re *RouteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// classify maps a provider failure onto the route error taxonomy.
func classify(err error) *RouteError {
	if re, ok := AsRouteError(err); ok {
		return re
	}
	if errors.Is(err, maps.ErrNotReady) {
		return &RouteError{Kind: KindProviderNotReady, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RouteError{Kind: KindUnknownProviderError, Status: maps.StatusTimeout, Err: err}
	}

	status := maps.StatusOf(err)
	switch status {
	case maps.StatusNotFound:
		return &RouteError{Kind: KindLocationNotFound, Status: status, Err: err}
	case maps.StatusZeroResults, maps.StatusMaxRouteLengthExceeded:
		return &RouteError{Kind: KindNoRouteFound, Status: status, Err: err}
	case maps.StatusMaxWaypointsExceeded:
		return &RouteError{Kind: KindTooManyWaypoints, Status: status, Err: err}
	case maps.StatusOverQueryLimit, maps.StatusOverDailyLimit:
		return &RouteError{Kind: KindRateLimited, Status: status, Err: err}
	case maps.StatusRequestDenied:
		return &RouteError{Kind: KindRequestDenied, Status: status, Err: err}
	case "":
		return &RouteError{Kind: KindUnknownProviderError, Status: "error", Err: err}
	default:
		return &RouteError{Kind: KindUnknownProviderError, Status: status, Err: err}
	}
}
