package discovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/sanitize"
)

// Suggestion is a lightweight, unresolved autocomplete candidate.
type Suggestion struct {
	ID            string `json:"id"`
	PrimaryText   string `json:"primaryText"`
	SecondaryText string `json:"secondaryText"`
}

func newSuggestion(p maps.Prediction) Suggestion {
	return Suggestion{
		ID:            p.PlaceID,
		PrimaryText:   sanitize.Text(p.MainText),
		SecondaryText: sanitize.Text(p.SecondaryText),
	}
}

// PlaceDetails is the enriched record handed to the caller on selection.
// Rating is null and RatingsCount 0 when the provider has no ratings; both
// are always present in JSON.
type PlaceDetails struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Address         string       `json:"address"`
	Description     string       `json:"description"`
	PhotoURL        string       `json:"photoUrl,omitempty"`
	Rating          *float64     `json:"rating"`
	RatingsCount    int          `json:"ratingsCount"`
	OpeningHours    []string     `json:"openingHours,omitempty"`
	OpenNow         *bool        `json:"openNow,omitempty"`
	Types           []string     `json:"types"`
	PrimaryCategory string       `json:"primaryCategory"`
	Location        *maps.LatLng `json:"location,omitempty"`
	AddedAt         time.Time    `json:"addedAt"`
}

// genericTypes are provider types too broad to describe a place.
var genericTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
}

const fallbackCategory = "attraction"

// PrimaryCategory returns the first specific type, humanized.
func PrimaryCategory(types []string) string {
	for _, t := range types {
		if t == "" || genericTypes[t] {
			continue
		}
		return strings.ReplaceAll(t, "_", " ")
	}
	return fallbackCategory
}

func enrich(p *maps.Place, regionName string, addedAt time.Time) *PlaceDetails {
	name := sanitize.Text(p.Name)
	category := PrimaryCategory(p.Types)

	d := &PlaceDetails{
		ID:              p.PlaceID,
		Name:            name,
		Address:         sanitize.Text(p.FormattedAddress),
		Description:     sanitize.Summary(p.EditorialSummary),
		Rating:          p.Rating,
		RatingsCount:    p.UserRatingsTotal,
		OpeningHours:    p.OpeningHours,
		OpenNow:         p.OpenNow,
		Types:           dedupe(p.Types),
		PrimaryCategory: category,
		AddedAt:         addedAt,
	}
	if d.Description == "" {
		d.Description = fmt.Sprintf("Visit %s - %s in %s", name, category, regionName)
	}
	if len(p.Photos) > 0 {
		d.PhotoURL = p.Photos[0].URL
	}
	if p.Location != nil {
		loc := *p.Location
		d.Location = &loc
	}
	if d.RatingsCount < 0 {
		d.RatingsCount = 0
	}
	return d
}

func dedupe(types []string) []string {
	out := make([]string, 0, len(types))
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
