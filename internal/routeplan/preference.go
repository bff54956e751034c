package routeplan

import (
	"fmt"
	"strings"
)

// Preference selects how a route is shaped. It is a client-side policy and
// is never sent to the provider verbatim.
type Preference int

const (
	Recommended Preference = iota
	Shortest
	Scenic
)

// Preferences lists every preference in display order.
var Preferences = []Preference{Recommended, Shortest, Scenic}

// Path accent colours. Screens rely on these to mean the same thing everywhere.
const (
	ColorRecommended = "#2563EB"
	ColorShortest    = "#16A34A"
	ColorScenic      = "#D97706"
)

func (p Preference) String() string {
	switch p {
	case Recommended:
		return "recommended"
	case Shortest:
		return "shortest"
	case Scenic:
		return "scenic"
	default:
		return fmt.Sprintf("preference(%d)", int(p))
	}
}

// Color returns the accent colour for paths rendered under p.
func (p Preference) Color() string {
	switch p {
	case Shortest:
		return ColorShortest
	case Scenic:
		return ColorScenic
	default:
		return ColorRecommended
	}
}

// OptimizeWaypoints reports whether the provider may reorder waypoints.
// Only Shortest does; Scenic keeps the order the traveller chose.
func (p Preference) OptimizeWaypoints() bool {
	return p == Shortest
}

// Avoid returns the road features the provider should avoid.
func (p Preference) Avoid() []string {
	if p == Scenic {
		return []string{"highways"}
	}
	return nil
}

// ParsePreference parses a preference name. The empty string is Recommended.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recommended":
		return Recommended, nil
	case "shortest":
		return Shortest, nil
	case "scenic":
		return Scenic, nil
	default:
		return Recommended, fmt.Errorf("unknown route preference %q (must be recommended, shortest or scenic)", s)
	}
}

func (p Preference) MarshalText() ([]byte, error) {
	switch p {
	case Recommended, Shortest, Scenic:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid route preference %d", int(p))
	}
}

func (p *Preference) UnmarshalText(text []byte) error {
	parsed, err := ParsePreference(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
