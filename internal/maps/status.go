package maps

import (
	"errors"
	"fmt"
)

// Provider status codes. They follow the Google Maps Platform web service
// vocabulary, which most vendors mirror closely enough to map onto.
const (
	StatusOK                     = "OK"
	StatusZeroResults            = "ZERO_RESULTS"
	StatusNotFound               = "NOT_FOUND"
	StatusMaxWaypointsExceeded   = "MAX_WAYPOINTS_EXCEEDED"
	StatusMaxRouteLengthExceeded = "MAX_ROUTE_LENGTH_EXCEEDED"
	StatusOverQueryLimit         = "OVER_QUERY_LIMIT"
	StatusOverDailyLimit         = "OVER_DAILY_LIMIT"
	StatusRequestDenied          = "REQUEST_DENIED"
	StatusInvalidRequest         = "INVALID_REQUEST"
	StatusUnknownError           = "UNKNOWN_ERROR"
	StatusTimeout                = "timeout"
)

// ErrNotReady is returned by Provider.Ready while the provider is still
// initializing.
var ErrNotReady = errors.New("maps provider not ready")

// StatusError is a non-OK provider status. Status is preserved verbatim for
// diagnostics.
type StatusError struct {
	Op      string
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: provider status %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: provider status %s: %s", e.Op, e.Status, e.Message)
}

// StatusOf extracts the provider status from err, or "" if err does not carry one.
func StatusOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return ""
}
