// Package probe implements the client-context probe task (component J):
// it asks the agent to emit OS/repo/user JSON files, then merges what
// comes back into the context cache.
package probe

import (
	"encoding/json"
	"log"

	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/common"
)

const (
	osProbePath      = ".client-os.json"
	contextProbePath = ".client-context.json"
)

// Merger receives the parsed probe payloads and is responsible for
// writing them into the appropriate context-cache namespaces
// (client.system, client.user, client.repo).
type Merger interface {
	MergeClientSystem(data map[string]any)
	MergeClientUser(data map[string]any)
	MergeClientRepo(data map[string]any)
}

// Task is the client-context probe.
type Task struct {
	sup    *supervisor.Supervisor
	env    common.RenderEnv
	merger Merger
	flags  *flags.Store

	osInstructionID      string
	contextInstructionID string
}

// Register subscribes t to FS_FILE_CONTENT and FS_COMMAND and registers it
// with sup.
func Register(sup *supervisor.Supervisor, env common.RenderEnv, fstore *flags.Store, merger Merger) (*Task, error) {
	t := &Task{sup: sup, env: env, merger: merger, flags: fstore}
	if _, err := events.Subscribe(sup.Bus(), t, events.FSFileContent|events.FSCommand, 0); err != nil {
		return nil, err
	}
	sup.RegisterTask(t)
	return t, nil
}

func (t *Task) Name() string { return "client-context-probe" }

// OnInit queues the OS probe request, but only if allow-client-info
// resolves truthy.
func (t *Task) OnInit() {
	v, ok := t.flags.Resolve("allow-client-info")
	if !ok || !truthy(v) {
		return
	}
	t.requestOSProbe()
}

func (t *Task) OnTool() {}

func (t *Task) requestOSProbe() {
	rc, err := t.env.Render("probe-os-request", map[string]any{"path": osProbePath})
	if err != nil {
		log.Printf("[PROBE] probe-os-request render failed: %v", err)
		return
	}
	if rc == nil {
		return
	}
	instruction := common.Instruction(rc)
	if instruction == "" {
		return
	}
	t.osInstructionID = t.sup.QueueTracked(instruction, 3, true)
}

func (t *Task) requestContextProbe() {
	rc, err := t.env.Render("probe-context-request", map[string]any{"path": contextProbePath})
	if err != nil {
		log.Printf("[PROBE] probe-context-request render failed: %v", err)
		return
	}
	if rc == nil {
		return
	}
	instruction := common.Instruction(rc)
	if instruction == "" {
		return
	}
	t.contextInstructionID = t.sup.QueueTracked(instruction, 3, true)
}

// HandleEvent acknowledges and merges probe responses as they arrive,
// matching on path. A malformed JSON payload is logged and left
// unacknowledged, so the retry pump eventually re-queues the request.
func (t *Task) HandleEvent(kinds events.Kind, data events.Data) bool {
	if !kinds.Has(events.FSFileContent) {
		return true
	}

	switch data.Path {
	case osProbePath:
		t.handleOSResponse(data.Content)
	case contextProbePath:
		t.handleContextResponse(data.Content)
	}
	return true
}

// handleOSResponse expects the wire shape {"client": {"system": {...}}}
// per spec.md §6 and unwraps both envelopes before merging.
func (t *Task) handleOSResponse(content string) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		log.Printf("[PROBE] malformed OS probe response, leaving unacknowledged: %v", err)
		return
	}
	if t.osInstructionID != "" {
		t.sup.Acknowledge(t.osInstructionID)
	}
	client, _ := parsed["client"].(map[string]any)
	system, _ := client["system"].(map[string]any)
	t.merger.MergeClientSystem(system)
	t.requestContextProbe()
}

// handleContextResponse expects the wire shape {"client": {...}} per
// spec.md §6, where client carries "user" and "repo" keys.
func (t *Task) handleContextResponse(content string) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		log.Printf("[PROBE] malformed context probe response, leaving unacknowledged: %v", err)
		return
	}
	if t.contextInstructionID != "" {
		t.sup.Acknowledge(t.contextInstructionID)
	}
	client, _ := parsed["client"].(map[string]any)
	user, _ := client["user"].(map[string]any)
	repo, _ := client["repo"].(map[string]any)
	t.merger.MergeClientUser(user)
	t.merger.MergeClientRepo(repo)
}

func truthy(v flags.Value) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	default:
		return v != nil
	}
}
