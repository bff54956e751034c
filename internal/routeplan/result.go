package routeplan

import (
	"encoding/json"
	"fmt"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// Point is a resolved leg endpoint.
type Point struct {
	Address  string      `json:"address"`
	Location maps.LatLng `json:"location"`
}

// Leg is the portion of a route between two consecutive stops.
type Leg struct {
	StartPoint      Point `json:"startPoint"`
	EndPoint        Point `json:"endPoint"`
	DistanceMeters  int   `json:"distanceMeters"`
	DurationSeconds int   `json:"durationSeconds"`
}

// Result is the normalized summary of one computed route. Totals are sums
// over Legs; formatted values are derived on demand.
type Result struct {
	DistanceMeters  int        `json:"distanceMeters"`
	DurationSeconds int        `json:"durationSeconds"`
	StartAddress    string     `json:"startAddress"`
	EndAddress      string     `json:"endAddress"`
	WaypointCount   int        `json:"waypointCount"`
	Preference      Preference `json:"preference"`
	Legs            []Leg      `json:"legs"`
	// WaypointOrder maps rendered position to submitted waypoint index.
	WaypointOrder []int    `json:"waypointOrder"`
	Polyline      string   `json:"polyline,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Distance is the total distance formatted in kilometres.
func (r *Result) Distance() string {
	return FormatDistance(r.DistanceMeters)
}

// Duration is the total driving time formatted as "Hh Mm" or "Mm".
func (r *Result) Duration() string {
	return FormatDuration(r.DurationSeconds)
}

func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		*plain
		Distance string `json:"distance"`
		Duration string `json:"duration"`
	}{
		plain:    (*plain)(r),
		Distance: r.Distance(),
		Duration: r.Duration(),
	})
}

// FormatDistance renders metres as kilometres with one decimal place.
func FormatDistance(meters int) string {
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}

// FormatDuration renders seconds as "Hh Mm" from one hour up, else "Mm".
// Partial minutes are dropped, so the unit never rounds past an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh %dm", seconds/3600, seconds%3600/60)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// assemble normalizes a provider route. waypoints are the stops actually
// submitted, in submission order.
func assemble(route *maps.Route, pref Preference, waypoints []Stop) *Result {
	res := &Result{
		WaypointCount: len(waypoints),
		Preference:    pref,
		Legs:          make([]Leg, 0, len(route.Legs)),
		WaypointOrder: waypointOrder(route.WaypointOrder, len(waypoints)),
		Polyline:      route.OverviewPolyline,
		Warnings:      route.Warnings,
	}
	for _, l := range route.Legs {
		res.Legs = append(res.Legs, Leg{
			StartPoint:      Point{Address: l.StartAddress, Location: l.StartLocation},
			EndPoint:        Point{Address: l.EndAddress, Location: l.EndLocation},
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: l.DurationSeconds,
		})
		res.DistanceMeters += l.DistanceMeters
		res.DurationSeconds += l.DurationSeconds
	}
	if n := len(res.Legs); n > 0 {
		res.StartAddress = res.Legs[0].StartPoint.Address
		res.EndAddress = res.Legs[n-1].EndPoint.Address
	}
	return res
}

// waypointOrder validates the provider's permutation, falling back to the
// identity when it is missing or malformed.
func waypointOrder(order []int, n int) []int {
	if len(order) == n {
		seen := make([]bool, n)
		ok := true
		for _, idx := range order {
			if idx < 0 || idx >= n || seen[idx] {
				ok = false
				break
			}
			seen[idx] = true
		}
		if ok {
			out := make([]int, n)
			copy(out, order)
			return out
		}
	}
	identity := make([]int, n)
	for i := range identity {
		identity[i] = i
	}
	return identity
}
