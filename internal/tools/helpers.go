// Package tools provides the MCP tool handlers for the ticket tracker.
//
// Each handler follows the same pattern:
// - A struct with its dependency (store.Store) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() validates input, runs one storage operation, shapes the result
//
// Validation failures and storage errors come back as tool errors with a
// human-readable message; they never crash the server.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int64) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int64(v)
}

// optStringArg extracts an optional string argument, distinguishing
// "absent" (nil) from "provided but empty" — partial updates need the
// difference.
func optStringArg(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// mapArg extracts an optional object argument.
func mapArg(req mcp.CallToolRequest, key string) map[string]any {
	v, ok := req.GetArguments()[key].(map[string]any)
	if !ok {
		return nil
	}
	return v
}

// jsonResult serializes v as the tool's text result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
