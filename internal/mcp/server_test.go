package mcp

import (
	"encoding/json"
	"testing"

	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
)

func newTestServer(t *testing.T) (*Server, *supervisor.Supervisor) {
	t.Helper()
	sup := supervisor.ResetForTesting()
	s := NewServer(sup)
	s.RegisterTool(ToolDefinition{
		Name: "echo",
		Handler: func(sessionID string, params map[string]any) (*ToolResult, error) {
			result := NewToolResult()
			result.Set("echo", params["text"])
			return result, nil
		},
	})
	return s, sup
}

func TestHandleInitialize(t *testing.T) {
	s, _ := newTestServer(t)
	resp := s.handle("sess-1", &JSONRPCRequest{JSONRPC: "2.0", Method: "initialize"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
}

func TestHandleToolsList(t *testing.T) {
	s, _ := newTestServer(t)
	resp := s.handle("sess-1", &JSONRPCRequest{JSONRPC: "2.0", Method: "tools/list"})
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", resp.Result)
	}
	tools, ok := result["tools"].([]map[string]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %v", result["tools"])
	}
}

func TestHandleToolsCallInjectsPendingInstruction(t *testing.T) {
	s, sup := newTestServer(t)
	sup.QueueInstruction("refresh your context", false)

	params, _ := json.Marshal(toolCallParams{Name: "echo", Arguments: map[string]any{"text": "hi"}})
	resp := s.handle("sess-1", &JSONRPCRequest{JSONRPC: "2.0", Method: "tools/call", Params: params})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(*ToolResult)
	if !ok {
		t.Fatalf("expected *ToolResult, got %T", resp.Result)
	}
	if result.AdditionalAgentInstructions() != "refresh your context" {
		t.Fatalf("expected injected instruction, got %q", result.AdditionalAgentInstructions())
	}
}

func TestHandleToolsCallUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)
	resp := s.handle("sess-1", &JSONRPCRequest{JSONRPC: "2.0", Method: "nonexistent"})
	if resp.Error == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestHandleToolsCallMissingName(t *testing.T) {
	s, _ := newTestServer(t)
	params, _ := json.Marshal(toolCallParams{})
	resp := s.handle("sess-1", &JSONRPCRequest{JSONRPC: "2.0", Method: "tools/call", Params: params})
	if resp.Error == nil {
		t.Fatalf("expected error for missing tool name")
	}
}
