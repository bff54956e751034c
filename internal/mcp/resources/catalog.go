// Package resources serves read-only reference documents describing what
// the planner accepts.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

const (
	catalogMIMEType = "application/json"

	PreferencesURI = "wanderlanka://route-preferences"
	CategoriesURI  = "wanderlanka://place-categories"
)

// Preference describes one route preference.
type Preference struct {
	Name              string   `json:"name"`
	Color             string   `json:"color"`
	OptimizeWaypoints bool     `json:"optimize_waypoints"`
	Avoid             []string `json:"avoid,omitempty"`
}

// Categories describes the discovery filter.
type Categories struct {
	Region     string   `json:"region"`
	RegionName string   `json:"region_name"`
	Types      []string `json:"types"`
}

// Catalog builds the planner reference documents.
type Catalog struct {
	categories Categories
}

// NewCatalog creates a catalog. Zero values fall back to the discovery
// defaults.
func NewCatalog(categories Categories) *Catalog {
	if categories.Region == "" {
		categories.Region = discovery.DefaultRegion
	}
	if categories.RegionName == "" {
		categories.RegionName = discovery.DefaultRegionName
	}
	if len(categories.Types) == 0 {
		categories.Types = discovery.DefaultTypes
	}
	return &Catalog{categories: categories}
}

func (c *Catalog) PreferencesResource() mcp.Resource {
	return mcp.NewResource(
		PreferencesURI,
		"Route preferences",
		mcp.WithResourceDescription("Route preferences accepted by plan_route, with their path colours and provider options"),
		mcp.WithMIMEType(catalogMIMEType),
	)
}

func (c *Catalog) CategoriesResource() mcp.Resource {
	return mcp.NewResource(
		CategoriesURI,
		"Place categories",
		mcp.WithResourceDescription("Region and place types that search_places is restricted to"),
		mcp.WithMIMEType(catalogMIMEType),
	)
}

// Preferences lists every preference in display order.
func (c *Catalog) Preferences() []Preference {
	out := make([]Preference, 0, len(routeplan.Preferences))
	for _, p := range routeplan.Preferences {
		out = append(out, Preference{
			Name:              p.String(),
			Color:             p.Color(),
			OptimizeWaypoints: p.OptimizeWaypoints(),
			Avoid:             p.Avoid(),
		})
	}
	return out
}

func (c *Catalog) PreferencesHandler(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(request.Params.URI, PreferencesURI, map[string]any{"preferences": c.Preferences()})
}

func (c *Catalog) CategoriesHandler(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(request.Params.URI, CategoriesURI, c.categories)
}

func jsonContents(requested, fallback string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", fallback, err)
	}
	uri := fallback
	if requested != "" {
		uri = requested
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: catalogMIMEType,
			Text:     string(data),
		},
	}, nil
}
