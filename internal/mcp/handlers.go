package mcp

import (
	"fmt"

	"github.com/deeprave/mcp-guide-go/internal/configstore"
	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/common"
	"github.com/deeprave/mcp-guide-go/internal/format"
	"github.com/deeprave/mcp-guide-go/internal/uri"
)

// Services bundles the dependencies the guide-domain tool handlers need:
// the render environment, the flag store, the supervisor, and the
// backing config store.
type Services struct {
	Sup    *supervisor.Supervisor
	Env    common.RenderEnv
	Flags  *flags.Store
	Config *configstore.Store
}

// RegisterDefaultTools registers the guide-domain tool surface: document
// retrieval, flag read/write, and tracked-instruction acknowledgement.
func RegisterDefaultTools(s *Server, svc Services) {
	registerDocumentTools(s, svc)
	registerFlagTools(s, svc)
	registerLedgerTools(s, svc)
}

// registerDocumentTools adds the get_document tool: resolve a guide://
// URI to a template path, render it, and format the result per the
// resolved content-format flag.
func registerDocumentTools(s *Server, svc Services) {
	s.RegisterTool(ToolDefinition{
		Name:        "get_document",
		Description: "Fetch and render a document addressed by a guide:// URI, applying frontmatter gating and the configured content formatter.",
		Parameters: map[string]ParameterDef{
			"uri": {Type: "string", Description: "guide://<collection>[/<document-path>] resource reference", Required: true},
		},
		Handler: func(sessionID string, params map[string]any) (*ToolResult, error) {
			raw, _ := params["uri"].(string)
			if raw == "" {
				return nil, fmt.Errorf("mcp: get_document requires a uri parameter")
			}
			g, err := uri.Parse(raw)
			if err != nil {
				return nil, err
			}

			templatePath := g.Document
			if templatePath == "" {
				templatePath = g.Collection
			}

			rc, err := svc.Env.Render(templatePath, map[string]any{"session_id": sessionID})
			if err != nil {
				return nil, fmt.Errorf("mcp: rendering %s: %w", raw, err)
			}
			result := NewToolResult()
			if rc == nil {
				result.Set("content", "")
				result.Set("filtered", true)
				return result, nil
			}

			style := format.StylePlain
			if v, ok := svc.Flags.Resolve("content-format"); ok {
				if s, ok := v.(string); ok && s != "" {
					style = format.Style(s)
				}
			}
			body, err := format.For(style).Format([]format.Item{{
				Name:     rc.TemplateName,
				Text:     rc.Body,
				MIMEType: "text/markdown",
			}})
			if err != nil {
				return nil, fmt.Errorf("mcp: formatting %s: %w", raw, err)
			}

			result.Set("content", body)
			result.Set("type", rc.TemplateType())
			if instruction := common.Instruction(rc); instruction != "" {
				result.SetAdditionalAgentInstructions(instruction)
			}
			return result, nil
		},
	})
}

// registerFlagTools adds set_flag and get_flags, both backed by the
// project/global configstore (component M) rather than the in-memory
// flags.Store directly, so changes persist across restarts.
func registerFlagTools(s *Server, svc Services) {
	s.RegisterTool(ToolDefinition{
		Name:        "set_flag",
		Description: "Set a project or global feature flag.",
		Parameters: map[string]ParameterDef{
			"name":   {Type: "string", Description: "Flag name, [A-Za-z0-9_-]+", Required: true},
			"value":  {Type: "string", Description: "Flag value", Required: true},
			"global": {Type: "boolean", Description: "Set in the global scope instead of project (default: false)", Required: false},
		},
		Handler: func(sessionID string, params map[string]any) (*ToolResult, error) {
			name, _ := params["name"].(string)
			value, _ := params["value"].(string)
			scope := flags.ScopeProject
			if g, _ := params["global"].(bool); g {
				scope = flags.ScopeGlobal
			}
			if err := svc.Config.Set(scope, name, value); err != nil {
				return nil, err
			}
			result := NewToolResult()
			result.Set("ok", true)
			return result, nil
		},
	})

	s.RegisterTool(ToolDefinition{
		Name:        "get_flags",
		Description: "List every resolved flag (project overriding global).",
		Parameters:  map[string]ParameterDef{},
		Handler: func(sessionID string, params map[string]any) (*ToolResult, error) {
			result := NewToolResult()
			resolved := make(map[string]any, len(svc.Flags.ResolveAll()))
			for name, value := range svc.Flags.ResolveAll() {
				resolved[name] = value
			}
			result.Set("flags", resolved)
			return result, nil
		},
	})
}

// registerLedgerTools adds acknowledge_instruction, the agent-facing half
// of the tracked-instruction contract: an agent that has acted on a
// tracked instruction calls this to clear it before its retry budget
// runs out.
func registerLedgerTools(s *Server, svc Services) {
	s.RegisterTool(ToolDefinition{
		Name:        "acknowledge_instruction",
		Description: "Acknowledge a tracked instruction by id, clearing it from the retry ledger.",
		Parameters: map[string]ParameterDef{
			"id": {Type: "string", Description: "Tracked instruction id returned alongside the original instruction", Required: true},
		},
		Handler: func(sessionID string, params map[string]any) (*ToolResult, error) {
			id, _ := params["id"].(string)
			if id == "" {
				return nil, fmt.Errorf("mcp: acknowledge_instruction requires an id parameter")
			}
			svc.Sup.Acknowledge(id)
			result := NewToolResult()
			result.Set("ok", true)
			return result, nil
		},
	})
}
