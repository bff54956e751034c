package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// decodeArguments copies the tool call arguments into dst. A nil argument
// set leaves dst untouched.
func decodeArguments(request mcp.CallToolRequest, dst any) error {
	if request.Params.Arguments == nil {
		return nil
	}
	data, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// toolResultJSON converts a payload to an MCP tool result with JSON content.
// Returns a tool error result if the conversion fails.
func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	resultJSON, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build response", err), nil
	}
	return resultJSON, nil
}
