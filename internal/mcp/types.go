// Package mcp implements the RPC transport (component N): a minimal
// MCP-shaped JSON-RPC server reachable over stdio and over HTTP, with a
// ToolRegistry and ConnectionManager serving guide:// document lookups
// and instruction-ledger tools.
package mcp

import "encoding/json"

// JSONRPCRequest is one incoming tool/prompt call, decoded off either the
// stdio line-delimited stream or an HTTP POST body.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is the reply to a JSONRPCRequest.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSONRPCNotification is an unsolicited server-to-client message, e.g. a
// pushed instruction delivered over the websocket connection between
// request/response cycles.
type JSONRPCNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// ToolResult is the outgoing payload for a tool call: arbitrary named
// fields plus the instruction-ledger's reserved field. It implements
// ledger.InstructionSink so Server can pass it straight through
// supervisor.ProcessResponse before replying.
type ToolResult struct {
	Fields map[string]any
}

// NewToolResult constructs a ToolResult with an initialized field map.
func NewToolResult() *ToolResult {
	return &ToolResult{Fields: make(map[string]any)}
}

// Set stores a named field in the result.
func (r *ToolResult) Set(key string, value any) {
	r.Fields[key] = value
}

// MarshalJSON renders the result's fields as a flat JSON object.
func (r *ToolResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// AdditionalAgentInstructions returns the reserved field's current value,
// or "" if absent or not a string.
func (r *ToolResult) AdditionalAgentInstructions() string {
	s, _ := r.Fields["additional_agent_instructions"].(string)
	return s
}

// SetAdditionalAgentInstructions sets the reserved field.
func (r *ToolResult) SetAdditionalAgentInstructions(text string) {
	r.Fields["additional_agent_instructions"] = text
}
