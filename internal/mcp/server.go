package mcp

import (
	"context"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/mcp/prompts"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/mcp/resources"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/mcp/tools"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

// Server wraps the MCP server with the route planner and place discovery
// so agents can plan trips through MCP tools, resources, and prompts.
type Server struct {
	mcp        *mcpserver.MCPServer
	routes     *tools.RouteTools
	places     *tools.PlaceTools
	catalog    *resources.Catalog
	promptTmpl *prompts.PromptTemplates
}

// Config holds configuration for the MCP server.
type Config struct {
	Name    string
	Version string
}

// Services groups the domain services exposed over MCP. Nil services are
// reported as "not configured" by the corresponding tools.
type Services struct {
	Planner    *routeplan.Planner
	Discovery  *discovery.Service
	Readiness  *maps.Readiness
	Categories resources.Categories
}

// NewServer creates a new MCP server with all capabilities enabled.
//
// Example usage:
//
//	srv := mcp.NewServer(mcp.Config{
//	    Name:    "WanderLanka Planner",
//	    Version: "1.0.0",
//	}, mcp.Services{Planner: planner, Discovery: discovery, Readiness: readiness})
func NewServer(cfg Config, svc Services) *Server {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("MCP server for the WanderLanka trip planner - plan and compare driving routes across Sri Lanka and discover tourist places"),
	)

	srv := &Server{
		mcp:        mcpServer,
		routes:     tools.NewRouteTools(svc.Planner, svc.Readiness),
		places:     tools.NewPlaceTools(svc.Discovery),
		catalog:    resources.NewCatalog(svc.Categories),
		promptTmpl: prompts.NewPromptTemplates(),
	}

	srv.registerTools()
	srv.registerResources()
	srv.registerPrompts()

	return srv
}

// MCPServer returns the underlying MCP server for use with transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(s.routes.PlanRouteTool(), s.routes.PlanRouteHandler)
	s.mcp.AddTool(s.routes.CompareRoutesTool(), s.routes.CompareRoutesHandler)
	s.mcp.AddTool(s.places.SearchPlacesTool(), s.places.SearchPlacesHandler)
	s.mcp.AddTool(s.places.GetPlaceDetailsTool(), s.places.GetPlaceDetailsHandler)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(s.catalog.PreferencesResource(), s.catalog.PreferencesHandler)
	s.mcp.AddResource(s.catalog.CategoriesResource(), s.catalog.CategoriesHandler)
}

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(s.promptTmpl.PlanTripPrompt(), s.promptTmpl.PlanTripHandler)
	s.mcp.AddPrompt(s.promptTmpl.FindAttractionsPrompt(), s.promptTmpl.FindAttractionsHandler)
}

// Shutdown releases server resources. The wrapped services are owned by the
// caller and are not closed here.
func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
