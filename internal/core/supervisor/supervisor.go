// Package supervisor implements the task supervisor (component H): the
// process-singleton that owns the event bus and instruction ledger and
// registers tasks.
package supervisor

import (
	"sync"
	"sync/atomic"

	"github.com/deeprave/mcp-guide-go/internal/core/events"
	"github.com/deeprave/mcp-guide-go/internal/core/ledger"
)

// Supervisor owns the event bus (F) and instruction ledger (G), a
// registry of live tasks, and a monotonic tool-invocation counter. mu
// guards only the task registry and the buffered filesystem events. The
// bus, the ledger and the flag store each guard their own state with
// their own lock, so each is safe to call from any goroutine, but there is
// no single lock spanning all three: a sequence of calls across them is
// not atomic.
type Supervisor struct {
	mu        sync.Mutex
	bus       *events.Bus
	ledger    *ledger.Ledger
	tasks     []events.Task
	toolCalls atomic.Int64

	pendingFS []pendingEvent
}

type pendingEvent struct {
	kinds events.Kind
	data  events.Data
}

var (
	instance     *Supervisor
	instanceOnce sync.Once
)

// Get returns the process-singleton Supervisor, creating it lazily on
// first access.
func Get() *Supervisor {
	instanceOnce.Do(func() {
		instance = newSupervisor()
	})
	return instance
}

func newSupervisor() *Supervisor {
	return &Supervisor{
		bus:    events.NewBus(),
		ledger: ledger.New(),
	}
}

// ResetForTesting clears all state and is the only sanctioned way to
// obtain a fresh Supervisor outside of process startup.
func ResetForTesting() *Supervisor {
	instanceOnce = sync.Once{}
	instance = newSupervisor()
	return instance
}

// RegisterTask adds task to the registry and invokes its OnInit
// synchronously, on the caller's goroutine, matching the "synchronously in
// the scheduler" requirement — registration is itself a scheduler-owned
// operation.
func (s *Supervisor) RegisterTask(task events.Task) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	task.OnInit()
}

// RemoveTask drops task from the registry, e.g. on explicit session
// teardown. Bus subscriptions are unaffected directly — they still rely on
// the weakref lapsing — but removing the strong registry reference is
// what lets that weakref actually go dead.
func (s *Supervisor) RemoveTask(task events.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t == task {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Bus returns the underlying event bus for subscription calls. Tasks
// subscribe via events.Subscribe(sup.Bus(), ...) directly, since
// Subscribe is generic over the subscriber's concrete type.
func (s *Supervisor) Bus() *events.Bus {
	return s.bus
}

// QueueInstruction forwards to the ledger's anonymous queue.
func (s *Supervisor) QueueInstruction(text string, priority bool) {
	s.ledger.Queue(text, priority)
}

// QueueTracked forwards to the ledger's tracked queue.
func (s *Supervisor) QueueTracked(text string, maxRetries int, priority bool) string {
	return s.ledger.QueueTracked(text, maxRetries, priority)
}

// Acknowledge forwards to the ledger.
func (s *Supervisor) Acknowledge(id string) {
	s.ledger.Acknowledge(id)
}

// IsQueueEmpty forwards to the ledger.
func (s *Supervisor) IsQueueEmpty() bool {
	return s.ledger.IsQueueEmpty()
}

// RetrySweep forwards to the ledger; called by the retry task only when
// the pending queue is empty (the caller, not the supervisor, enforces
// that precondition, matching §4.L).
func (s *Supervisor) RetrySweep() {
	s.ledger.RetrySweep()
}

// ProcessResponse injects the next pending instruction into response, if
// any.
func (s *Supervisor) ProcessResponse(response ledger.InstructionSink) ledger.InstructionSink {
	return s.ledger.Inject(response)
}

// OnInstructionExhausted forwards to the ledger's retry-exhaustion hook,
// so outside consumers (the desktop notifier §4.P, the RPC transport's
// push channel) never need a direct reference to the ledger itself.
func (s *Supervisor) OnInstructionExhausted(fn func(text string)) {
	s.ledger.OnExhausted(fn)
}

// Dispatch forwards an event directly to the bus. Filesystem-kind events
// observed between tool-call boundaries should instead go through
// QueueFilesystemEvent/OnToolCalled so they are delivered at the documented
// boundary; Dispatch is for the scheduler's own immediate dispatch (e.g.
// session-change notifications) where no such boundary applies.
func (s *Supervisor) Dispatch(kinds events.Kind, data events.Data) {
	s.bus.Dispatch(kinds, data)
}

// Tick drives the bus's timer subscriptions.
func (s *Supervisor) Tick() {
	s.bus.Tick()
}

// QueueFilesystemEvent buffers a filesystem-derived event for delivery at
// the next tool-call boundary, per OnToolCalled's documented contract.
func (s *Supervisor) QueueFilesystemEvent(kinds events.Kind, data events.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFS = append(s.pendingFS, pendingEvent{kinds: kinds, data: data})
}

// OnToolCalled increments the tool-invocation counter, calls OnTool() on
// every live task, then dispatches any filesystem-derived events buffered
// since the last boundary.
func (s *Supervisor) OnToolCalled() {
	s.toolCalls.Add(1)

	s.mu.Lock()
	tasks := make([]events.Task, len(s.tasks))
	copy(tasks, s.tasks)
	pending := s.pendingFS
	s.pendingFS = nil
	s.mu.Unlock()

	for _, t := range tasks {
		t.OnTool()
	}
	for _, ev := range pending {
		s.bus.Dispatch(ev.kinds, ev.data)
	}
}

// ToolCallCount reports the monotonic tool-invocation counter.
func (s *Supervisor) ToolCallCount() int64 {
	return s.toolCalls.Load()
}
