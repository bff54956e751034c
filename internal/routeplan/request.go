package routeplan

import (
	"strings"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// Stop is a named or geocoded location taking part in a route.
type Stop struct {
	Label      string       `json:"label,omitempty"`
	Address    string       `json:"address,omitempty"`
	Coordinate *maps.LatLng `json:"coordinate,omitempty"`
}

// ParseStop reads a stop typed as either "lat,lng" or free text.
func ParseStop(value string) Stop {
	value = strings.TrimSpace(value)
	if ll, err := maps.ParseLatLng(value); err == nil {
		return Stop{Label: value, Coordinate: &ll}
	}
	return Stop{Label: value}
}

// Blank reports whether the stop carries nothing the provider could resolve.
func (s Stop) Blank() bool {
	return s.Coordinate == nil &&
		strings.TrimSpace(s.Address) == "" &&
		strings.TrimSpace(s.Label) == ""
}

// Location converts the stop to a provider location. The resolved address
// wins over the label; a coordinate wins over both.
func (s Stop) Location() maps.Location {
	if s.Coordinate != nil {
		c := *s.Coordinate
		return maps.Location{Address: s.Address, Coordinate: &c}
	}
	address := strings.TrimSpace(s.Address)
	if address == "" {
		address = strings.TrimSpace(s.Label)
	}
	return maps.Location{Address: address}
}

// Name is the human readable name used for markers.
func (s Stop) Name() string {
	if label := strings.TrimSpace(s.Label); label != "" {
		return label
	}
	if address := strings.TrimSpace(s.Address); address != "" {
		return address
	}
	if s.Coordinate != nil {
		return s.Coordinate.String()
	}
	return ""
}

// Request is one route computation. Treat it as a value: the With helpers
// return modified copies and never touch the receiver's waypoint slice.
type Request struct {
	Origin      Stop       `json:"origin"`
	Destination Stop       `json:"destination"`
	Waypoints   []Stop     `json:"waypoints,omitempty"`
	Preference  Preference `json:"preference"`
}

// Complete reports whether both ends of the route are present.
func (r Request) Complete() bool {
	return !r.Origin.Blank() && !r.Destination.Blank()
}

// WithOrigin returns a copy of r with a new origin.
func (r Request) WithOrigin(s Stop) Request {
	r.Waypoints = cloneStops(r.Waypoints)
	r.Origin = s
	return r
}

// WithDestination returns a copy of r with a new destination.
func (r Request) WithDestination(s Stop) Request {
	r.Waypoints = cloneStops(r.Waypoints)
	r.Destination = s
	return r
}

// WithWaypoints returns a copy of r with the given waypoints.
func (r Request) WithWaypoints(stops []Stop) Request {
	r.Waypoints = cloneStops(stops)
	return r
}

// WithPreference returns a copy of r with a new preference.
func (r Request) WithPreference(p Preference) Request {
	r.Waypoints = cloneStops(r.Waypoints)
	r.Preference = p
	return r
}

// usableWaypoints drops blank waypoints, keeping the relative order of the rest.
func (r Request) usableWaypoints() []Stop {
	out := make([]Stop, 0, len(r.Waypoints))
	for _, wp := range r.Waypoints {
		if wp.Blank() {
			continue
		}
		out = append(out, wp)
	}
	return out
}

func cloneStops(stops []Stop) []Stop {
	if stops == nil {
		return nil
	}
	return append([]Stop(nil), stops...)
}
