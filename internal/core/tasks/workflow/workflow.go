// Package workflow implements the workflow-monitor task (component I):
// it watches a configured `.guide.yaml` path for changes, diffs the
// parsed state against what it last saw, and queues a template-derived
// instruction for every changed field.
package workflow

import (
	"log"
	"time"

	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/deeprave/mcp-guide-go/internal/core/tasks/common"
	wf "github.com/deeprave/mcp-guide-go/internal/workflow"
)

const timerInterval = 60 * time.Second

// Task is the workflow-monitor. It carries its own (prevState,
// setupTrackedID) per §3's "state machines" note — the supervisor keeps
// no per-task state beyond "registered and alive".
type Task struct {
	sup         *supervisor.Supervisor
	env         common.RenderEnv
	workflowPath string

	prevState      *wf.State
	setupTrackedID string
	setupAcked     bool

	onPhaseChange func(from, to string)
}

// OnPhaseChange installs a callback fired whenever the monitored file
// reports a phase change, after the tracked instruction has been queued.
// Outside consumers (the desktop notifier §4.P, the relay bridge §4.O)
// use this to react to phase transitions without the task depending on
// either of them.
func (t *Task) OnPhaseChange(fn func(from, to string)) {
	t.onPhaseChange = fn
}

// New constructs the task but neither subscribes nor registers it.
// Register constructs its own task through New and does both, invoking
// OnInit.
func New(sup *supervisor.Supervisor, env common.RenderEnv, workflowPath string) *Task {
	return &Task{sup: sup, env: env, workflowPath: workflowPath}
}

// Register registers t with sup's bus (FS_FILE_CONTENT + 60s TIMER) and
// task registry. It must be called exactly once per session.
func Register(sup *supervisor.Supervisor, env common.RenderEnv, workflowPath string) (*Task, error) {
	t := New(sup, env, workflowPath)
	if _, err := events.Subscribe(sup.Bus(), t, events.FSFileContent|events.Timer, timerInterval); err != nil {
		return nil, err
	}
	sup.RegisterTask(t)
	return t, nil
}

func (t *Task) Name() string { return "workflow-monitor" }

// OnInit renders monitoring-setup and queues it as priority-tracked,
// remembering the id so the first subsequent workflow-file response
// acknowledges it.
func (t *Task) OnInit() {
	rc, err := t.env.Render("monitoring-setup", nil)
	if err != nil {
		log.Printf("[WORKFLOW] monitoring-setup render failed: %v", err)
		return
	}
	if rc == nil {
		return
	}
	instruction := common.Instruction(rc)
	if instruction == "" {
		return
	}
	t.setupTrackedID = t.sup.QueueTracked(instruction, 3, true)
}

func (t *Task) OnTool() {}

// HandleEvent reacts to FS_FILE_CONTENT for the configured workflow path
// and to the 60s TIMER tick.
func (t *Task) HandleEvent(kinds events.Kind, data events.Data) bool {
	if kinds.Has(events.Timer) {
		t.onTimer()
	}
	if kinds.Has(events.FSFileContent) && data.Path == t.workflowPath {
		t.onFileContent(data.Content)
	}
	return true
}

func (t *Task) onFileContent(content string) {
	if !t.setupAcked && t.setupTrackedID != "" {
		t.sup.Acknowledge(t.setupTrackedID)
		t.setupAcked = true
	}

	next, err := wf.Parse([]byte(content))
	if err != nil {
		log.Printf("[WORKFLOW] parse error, retaining previous state: %v", err)
		return
	}
	if next == nil {
		return
	}

	changes := wf.Detect(t.prevState, next)
	t.prevState = next

	for _, c := range changes {
		t.queueForChange(c)
	}
}

func (t *Task) queueForChange(c wf.Change) {
	templateName := wf.InstructionTemplateFor(c)
	rc, err := t.env.Render(templateName, changeContext(c))
	if err != nil {
		log.Printf("[WORKFLOW] render of %q failed: %v", templateName, err)
		return
	}
	if rc == nil {
		return
	}
	instruction := common.Instruction(rc)
	if instruction == "" {
		return
	}
	priority := c.Type == wf.ChangePhase
	t.sup.QueueTracked(instruction, 3, priority)

	if priority && t.onPhaseChange != nil {
		t.onPhaseChange(c.From, c.To)
	}
}

func changeContext(c wf.Change) map[string]any {
	return map[string]any{
		"change_type": string(c.Type),
		"from":        c.From,
		"to":          c.To,
		"added":       c.Added,
		"removed":     c.Removed,
	}
}

func (t *Task) onTimer() {
	if !t.sup.IsQueueEmpty() {
		return
	}
	rc, err := t.env.Render("monitoring-reminder", nil)
	if err != nil {
		log.Printf("[WORKFLOW] monitoring-reminder render failed: %v", err)
		return
	}
	if rc == nil {
		return
	}
	instruction := common.Instruction(rc)
	if instruction == "" {
		return
	}
	t.sup.QueueInstruction(instruction, false)
}
