// Package startup implements the startup listener (component K): on a
// session's first activation, it renders and priority-queues a startup
// template if the session's project names one.
package startup

import (
	"log"
	"sync"

	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/flags"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/common"
	"github.com/deeprave/mcp-guide-go/internal/docexpr"
	"github.com/deeprave/mcp-guide-go/internal/stringutils"
)

// SessionEventKind is a synthetic bit the scheduler uses to announce
// "session activated" to interested tasks. It is distinct from the
// filesystem/timer bits defined by the core event model and is only ever
// dispatched directly (not forwarded through OnToolCalled's buffering).
const SessionEventKind events.Kind = 1 << 20

// Task is the startup listener. It guards against re-processing the same
// session with an in-memory set, matching the one-shot-per-session
// contract.
type Task struct {
	sup *supervisor.Supervisor
	env common.RenderEnv

	mu        sync.Mutex
	processed map[string]bool
}

// Register subscribes t to SessionEventKind and registers it with sup.
func Register(sup *supervisor.Supervisor, env common.RenderEnv) (*Task, error) {
	t := &Task{sup: sup, env: env, processed: make(map[string]bool)}
	if _, err := events.Subscribe(sup.Bus(), t, SessionEventKind, 0); err != nil {
		return nil, err
	}
	sup.RegisterTask(t)
	return t, nil
}

func (t *Task) Name() string { return "startup-listener" }
func (t *Task) OnInit()      {}
func (t *Task) OnTool()      {}

// HandleEvent expects data.Command to carry the session ID and
// data.Path to carry the resolved startup-instruction flag value (the
// scheduler is responsible for populating both before dispatching
// SessionEventKind).
func (t *Task) HandleEvent(kinds events.Kind, data events.Data) bool {
	if !kinds.Has(SessionEventKind) {
		return true
	}
	sessionID := data.Command
	if sessionID == "" {
		return true
	}

	t.mu.Lock()
	if t.processed[sessionID] {
		t.mu.Unlock()
		return true
	}
	t.processed[sessionID] = true
	t.mu.Unlock()

	t.onSessionActivated(data.Path)
	return true
}

// OnSessionChanged is the direct-call entry point a scheduler uses instead
// of threading session identity through events.Data, for callers that
// already hold a typed session/flag reference.
func (t *Task) OnSessionChanged(sessionID string, fstore *flags.Store) {
	t.mu.Lock()
	if t.processed[sessionID] {
		t.mu.Unlock()
		return
	}
	t.processed[sessionID] = true
	t.mu.Unlock()

	startupFlag, ok := fstore.Resolve("startup-instruction")
	if !ok {
		return
	}
	raw, _ := startupFlag.(string)
	t.onSessionActivated(raw)
}

func (t *Task) onSessionActivated(rawExpr string) {
	if rawExpr == "" {
		return
	}
	expr := docexpr.Parse(rawExpr)
	if expr.Name == "" {
		return
	}

	rc, err := t.env.Render("_startup", map[string]any{"category_dir": ""})
	if err != nil {
		log.Printf("[STARTUP] _startup render failed: %v", err)
		return
	}
	if rc == nil {
		return
	}
	if stringutils.IsEmpty(rc.Body) {
		return
	}
	t.sup.QueueInstruction(rc.Body, true)
}
