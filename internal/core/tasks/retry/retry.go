// Package retry implements the retry task (component L): a timer-only
// sweep of the ledger's tracked instructions, run whenever the pending
// queue is empty.
package retry

import (
	"time"

	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
)

const timerInterval = 60 * time.Second

// Task is the retry sweep task. It is stateless beyond the registered
// timer subscription itself.
type Task struct {
	sup *supervisor.Supervisor
}

// Register subscribes t to a 60s TIMER-only subscription and registers it
// with sup.
func Register(sup *supervisor.Supervisor) (*Task, error) {
	t := &Task{sup: sup}
	if _, err := events.Subscribe(sup.Bus(), t, events.Timer, timerInterval); err != nil {
		return nil, err
	}
	sup.RegisterTask(t)
	return t, nil
}

func (t *Task) Name() string { return "retry" }
func (t *Task) OnInit()      {}
func (t *Task) OnTool()      {}

// HandleEvent invokes the ledger's retry sweep only when the supervisor's
// pending queue is currently empty.
func (t *Task) HandleEvent(kinds events.Kind, data events.Data) bool {
	if !kinds.Has(events.Timer) {
		return true
	}
	if t.sup.IsQueueEmpty() {
		t.sup.RetrySweep()
	}
	return true
}
