package routeplan

import "strconv"

// MarkerKind distinguishes route endpoints from intermediate stops.
type MarkerKind string

const (
	MarkerStart       MarkerKind = "start"
	MarkerWaypoint    MarkerKind = "waypoint"
	MarkerDestination MarkerKind = "destination"
)

// Marker is one labelled pin on the rendered route.
type Marker struct {
	Label    string     `json:"label"`
	Kind     MarkerKind `json:"kind"`
	Position Point      `json:"position"`
	// Stop is the request stop the marker stands for.
	Stop Stop `json:"stop"`
}

// PathStyle is how the route polyline is drawn.
type PathStyle struct {
	Color         string  `json:"color"`
	StrokeWeight  int     `json:"strokeWeight"`
	StrokeOpacity float64 `json:"strokeOpacity"`
	Polyline      string  `json:"polyline,omitempty"`
}

// View is a computed route together with everything needed to draw it.
type View struct {
	Result  *Result   `json:"result"`
	Markers []Marker  `json:"markers"`
	Path    PathStyle `json:"path"`
}

const (
	pathStrokeWeight  = 5
	pathStrokeOpacity = 0.85
)

// render builds markers and path styling. Waypoint labels follow the leg
// sequence the provider returned, so under Shortest "1" is the first stop
// actually visited rather than the first stop the traveller typed.
func render(req Request, waypoints []Stop, res *Result) *View {
	view := &View{
		Result: res,
		Path: PathStyle{
			Color:         res.Preference.Color(),
			StrokeWeight:  pathStrokeWeight,
			StrokeOpacity: pathStrokeOpacity,
			Polyline:      res.Polyline,
		},
	}
	if len(res.Legs) == 0 {
		return view
	}

	view.Markers = make([]Marker, 0, len(res.Legs)+1)
	view.Markers = append(view.Markers, Marker{
		Label:    "A",
		Kind:     MarkerStart,
		Position: res.Legs[0].StartPoint,
		Stop:     req.Origin,
	})
	for i := 0; i < len(res.Legs)-1; i++ {
		m := Marker{
			Label:    strconv.Itoa(i + 1),
			Kind:     MarkerWaypoint,
			Position: res.Legs[i].EndPoint,
		}
		if i < len(res.WaypointOrder) && res.WaypointOrder[i] < len(waypoints) {
			m.Stop = waypoints[res.WaypointOrder[i]]
		}
		view.Markers = append(view.Markers, m)
	}
	view.Markers = append(view.Markers, Marker{
		Label:    "B",
		Kind:     MarkerDestination,
		Position: res.Legs[len(res.Legs)-1].EndPoint,
		Stop:     req.Destination,
	})
	return view
}
