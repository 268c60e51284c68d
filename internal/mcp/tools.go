package mcp

import "fmt"

// ToolHandler processes one tool call for a given session and returns the
// result to serialize back to the agent.
type ToolHandler func(sessionID string, params map[string]any) (*ToolResult, error)

// ParameterDef describes one tool input-schema property.
type ParameterDef struct {
	Type        string
	Description string
	Required    bool
}

// ToolDefinition describes one registered MCP tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]ParameterDef
	Handler     ToolHandler
}

// ToolRegistry maps tool name to definition. Handlers receive the session
// id rather than an agent connection identity, since one agent may hold
// several concurrent sessions.
type ToolRegistry struct {
	tools map[string]ToolDefinition
}

// NewToolRegistry constructs an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]ToolDefinition)}
}

// Register adds or replaces a tool definition.
func (r *ToolRegistry) Register(tool ToolDefinition) {
	r.tools[tool.Name] = tool
}

// Get returns a tool definition by name.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// List renders the tools/list JSON-Schema payload.
func (r *ToolRegistry) List() []map[string]any {
	tools := make([]map[string]any, 0, len(r.tools))
	for _, tool := range r.tools {
		props := make(map[string]any, len(tool.Parameters))
		required := make([]string, 0)
		for name, def := range tool.Parameters {
			props[name] = map[string]any{
				"type":        def.Type,
				"description": def.Description,
			}
			if def.Required {
				required = append(required, name)
			}
		}
		tools = append(tools, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": map[string]any{
				"type":       "object",
				"properties": props,
				"required":   required,
			},
		})
	}
	return tools
}

// Execute dispatches name's handler for sessionID.
func (r *ToolRegistry) Execute(name, sessionID string, params map[string]any) (*ToolResult, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("mcp: unknown tool %q", name)
	}
	return tool.Handler(sessionID, params)
}
