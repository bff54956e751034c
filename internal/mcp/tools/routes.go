package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// RouteTools exposes route planning to MCP clients.
type RouteTools struct {
	planner   *routeplan.Planner
	readiness *maps.Readiness
}

// NewRouteTools creates a new RouteTools instance. readiness may be nil.
func NewRouteTools(planner *routeplan.Planner, readiness *maps.Readiness) *RouteTools {
	return &RouteTools{planner: planner, readiness: readiness}
}

type routeArgs struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Waypoints   []string `json:"waypoints"`
	Preference  string   `json:"preference"`
}

func (a routeArgs) request() (routeplan.Request, error) {
	pref, err := routeplan.ParsePreference(a.Preference)
	if err != nil {
		return routeplan.Request{}, err
	}
	req := routeplan.Request{
		Origin:      routeplan.ParseStop(a.Origin),
		Destination: routeplan.ParseStop(a.Destination),
		Preference:  pref,
	}
	for _, wp := range a.Waypoints {
		req.Waypoints = append(req.Waypoints, routeplan.ParseStop(wp))
	}
	if !req.Complete() {
		return routeplan.Request{}, fmt.Errorf("origin and destination are required")
	}
	return req, nil
}

var stopSchema = map[string]any{"type": "string"}

// PlanRouteTool returns the MCP tool definition for planning one route.
func (t *RouteTools) PlanRouteTool() mcp.Tool {
	return mcp.NewTool("plan_route",
		mcp.WithDescription("Plan a driving route in Sri Lanka from an origin to a destination through optional waypoints. Stops are place names or \"lat,lng\" coordinates. Returns total distance and duration, per-leg details and labelled map markers."),
		mcp.WithString("origin", mcp.Required(), mcp.Description("Starting point, e.g. \"Colombo\" or \"6.9271,79.8612\"")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("End point")),
		mcp.WithArray("waypoints", mcp.Description("Intermediate stops in visiting order"), mcp.Items(stopSchema)),
		mcp.WithString("preference",
			mcp.Description("Route preference: recommended (default), shortest (may reorder waypoints) or scenic (avoids highways)"),
			mcp.Enum("recommended", "shortest", "scenic"),
		),
	)
}

// PlanRouteHandler handles the plan_route tool call.
func (t *RouteTools) PlanRouteHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.planner == nil {
		return mcp.NewToolResultError("route planner not configured"), nil
	}

	var args routeArgs
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	req, err := args.request()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if result := t.awaitProvider(ctx); result != nil {
		return result, nil
	}

	view, err := t.planner.Compute(ctx, req)
	if err != nil {
		return routeErrorResult(err), nil
	}
	return toolResultJSON(view)
}

// CompareRoutesTool returns the MCP tool definition for comparing
// preferences over the same stops.
func (t *RouteTools) CompareRoutesTool() mcp.Tool {
	return mcp.NewTool("compare_routes",
		mcp.WithDescription("Plan the same trip under every route preference (recommended, shortest, scenic) and return each outcome side by side. A preference that fails carries its error instead of a route."),
		mcp.WithString("origin", mcp.Required(), mcp.Description("Starting point")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("End point")),
		mcp.WithArray("waypoints", mcp.Description("Intermediate stops"), mcp.Items(stopSchema)),
	)
}

type comparisonItem struct {
	Preference routeplan.Preference `json:"preference"`
	Distance   string               `json:"distance,omitempty"`
	Duration   string               `json:"duration,omitempty"`
	Route      *routeplan.View      `json:"route,omitempty"`
	Error      string               `json:"error,omitempty"`
	ErrorKind  routeplan.Kind       `json:"error_kind,omitempty"`
}

// CompareRoutesHandler handles the compare_routes tool call.
func (t *RouteTools) CompareRoutesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.planner == nil {
		return mcp.NewToolResultError("route planner not configured"), nil
	}

	var args routeArgs
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	args.Preference = ""
	req, err := args.request()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if result := t.awaitProvider(ctx); result != nil {
		return result, nil
	}

	cmp, err := t.planner.Compare(ctx, req)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to compare routes", err), nil
	}

	items := make([]comparisonItem, 0, len(routeplan.Preferences))
	for _, pref := range routeplan.Preferences {
		item := comparisonItem{Preference: pref}
		if view := cmp.Views[pref]; view != nil {
			item.Route = view
			item.Distance = view.Result.Distance()
			item.Duration = view.Result.Duration()
		} else if re, ok := routeplan.AsRouteError(cmp.Errors[pref]); ok {
			item.Error = re.UserMessage()
			item.ErrorKind = re.Kind
		}
		items = append(items, item)
	}
	return toolResultJSON(map[string]any{"routes": items})
}

// awaitProvider returns a tool error when the maps provider did not become
// ready within ctx.
func (t *RouteTools) awaitProvider(ctx context.Context) *mcp.CallToolResult {
	if t.readiness == nil {
		return nil
	}
	err := t.readiness.Wait(ctx)
	if err == nil {
		return nil
	}
	kind := routeplan.KindProviderNotReady
	if maps.StatusOf(err) == maps.StatusRequestDenied {
		kind = routeplan.KindRequestDenied
	}
	return routeErrorResult(&routeplan.RouteError{Kind: kind, Err: err})
}

// routeErrorResult reports a route failure with its kind so agents can
// decide whether retrying is worthwhile.
func routeErrorResult(err error) *mcp.CallToolResult {
	re, ok := routeplan.AsRouteError(err)
	if !ok {
		return mcp.NewToolResultErrorFromErr("failed to plan route", err)
	}
	return mcp.NewToolResultErrorf("%s (kind: %s, retryable: %t)", re.UserMessage(), re.Kind, re.Retryable())
}
