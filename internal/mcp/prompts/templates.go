package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	planTripPrompt        = "plan_trip"
	findAttractionsPrompt = "find_attractions"
)

type PromptTemplates struct{}

func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{}
}

func (p *PromptTemplates) PlanTripPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		planTripPrompt,
		mcp.WithPromptDescription("Plan a driving itinerary between Sri Lankan destinations and pick the best route preference"),
		mcp.WithArgument("start", mcp.ArgumentDescription("Where the trip starts, e.g. Colombo")),
		mcp.WithArgument("end", mcp.ArgumentDescription("Where the trip ends")),
		mcp.WithArgument("stops", mcp.ArgumentDescription("Comma separated places to visit on the way")),
		mcp.WithArgument("interests", mcp.ArgumentDescription("What the traveller enjoys (beaches, temples, wildlife)")),
	)
}

func (p *PromptTemplates) FindAttractionsPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		findAttractionsPrompt,
		mcp.WithPromptDescription("Find attractions near a Sri Lankan town and shortlist the best rated"),
		mcp.WithArgument("area", mcp.ArgumentDescription("Town or region to explore, e.g. Ella")),
		mcp.WithArgument("interests", mcp.ArgumentDescription("Kinds of places wanted")),
	)
}

func (p *PromptTemplates) PlanTripHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	start := getArgString(args, "start")
	if start == "" {
		start = "Colombo"
	}
	end := getArgString(args, "end")
	stops := getArgString(args, "stops")
	if stops == "" {
		stops = "none yet"
	}
	interests := getArgString(args, "interests")
	if interests == "" {
		interests = "general sightseeing"
	}

	text := fmt.Sprintf("Plan a driving trip in Sri Lanka from %s to %s.\n\nStops so far: %s\nInterests: %s\n\n"+
		"Use search_places and get_place_details to suggest additional stops that match the interests. "+
		"Then call compare_routes with the final stops and recommend one preference, explaining the trade-off in distance and driving time.",
		start, end, stops, interests)

	return &mcp.GetPromptResult{
		Description: "Plan a Sri Lankan road trip",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func (p *PromptTemplates) FindAttractionsHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	area := getArgString(args, "area")
	interests := getArgString(args, "interests")

	text := fmt.Sprintf("Find tourist attractions around %s. Search with search_places using several short queries, "+
		"look up the most promising ones with get_place_details and return a shortlist ordered by rating.\n\nInterests: %s",
		area, interests)

	return &mcp.GetPromptResult{
		Description: "Shortlist attractions near a town",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func getArgString(args map[string]string, key string) string {
	if args == nil {
		return ""
	}
	return args[key]
}
