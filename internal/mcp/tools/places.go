package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

const maxQueryLength = 200

// PlaceTools provides MCP tools for finding tourist places.
type PlaceTools struct {
	discovery *discovery.Service
}

// NewPlaceTools creates a new PlaceTools instance.
func NewPlaceTools(svc *discovery.Service) *PlaceTools {
	return &PlaceTools{discovery: svc}
}

// SearchPlacesTool returns the MCP tool definition for place search.
func (t *PlaceTools) SearchPlacesTool() mcp.Tool {
	return mcp.NewTool("search_places",
		mcp.WithDescription("Search Sri Lankan tourist places (attractions, museums, parks, natural features, places of worship) by partial name. Returns lightweight suggestions; use get_place_details for ratings, hours and a description."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text typed so far, e.g. \"sigiri\"")),
		mcp.WithString("session_token", mcp.Description("Optional token grouping the searches that lead to one selection")),
	)
}

// SearchPlacesHandler handles the search_places tool call.
func (t *PlaceTools) SearchPlacesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.discovery == nil {
		return mcp.NewToolResultError("place discovery not configured"), nil
	}

	args := struct {
		Query        string `json:"query"`
		SessionToken string `json:"session_token"`
	}{}
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	if len(args.Query) > maxQueryLength {
		return mcp.NewToolResultError("query must be at most 200 characters"), nil
	}

	suggestions, err := t.discovery.Autocomplete(ctx, args.Query, strings.TrimSpace(args.SessionToken))
	if err != nil {
		return placesErrorResult("failed to search places", err), nil
	}
	return toolResultJSON(map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// GetPlaceDetailsTool returns the MCP tool definition for place details.
func (t *PlaceTools) GetPlaceDetailsTool() mcp.Tool {
	return mcp.NewTool("get_place_details",
		mcp.WithDescription("Get enriched details for a place id returned by search_places: name, address, description, photo, rating, opening hours and primary category."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Place id from a search_places suggestion")),
	)
}

// GetPlaceDetailsHandler handles the get_place_details tool call.
func (t *PlaceTools) GetPlaceDetailsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.discovery == nil {
		return mcp.NewToolResultError("place discovery not configured"), nil
	}

	args := struct {
		ID string `json:"id"`
	}{}
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if strings.TrimSpace(args.ID) == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	details, err := t.discovery.Resolve(ctx, args.ID)
	if err != nil {
		return placesErrorResult("failed to get place details", err), nil
	}
	return toolResultJSON(details)
}

func placesErrorResult(msg string, err error) *mcp.CallToolResult {
	switch maps.StatusOf(err) {
	case maps.StatusNotFound, maps.StatusZeroResults:
		return mcp.NewToolResultError("place not found")
	case maps.StatusOverQueryLimit, maps.StatusOverDailyLimit:
		return mcp.NewToolResultError("place search is busy, try again shortly")
	case maps.StatusRequestDenied:
		return mcp.NewToolResultError("place search is unavailable: the maps provider denied the request")
	default:
		return mcp.NewToolResultErrorFromErr(msg, err)
	}
}
