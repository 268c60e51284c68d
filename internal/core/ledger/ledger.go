// Package ledger implements the core's instruction ledger (component G): a
// prioritized FIFO of pending instruction text, plus a tracked-instruction
// table with retry budgets and acknowledgement.
package ledger

import (
	"sync"

	"github.com/google/uuid"
)

const defaultMaxRetries = 3

// Tracked is a trackable pending instruction: its text has been queued
// under the ordinary dedup/priority rule, and the ledger separately
// remembers it until it is acknowledged or its retries are exhausted.
type Tracked struct {
	ID        string
	Text      string
	Remaining int
	Max       int
	Priority  bool
}

// InstructionSink is the narrow response-shape the RPC boundary's outgoing
// payload must expose for Inject to operate on. A response type that does
// not implement it is treated as "cannot accept the field": Inject pushes
// the instruction back onto the queue head and returns the response
// untouched.
type InstructionSink interface {
	AdditionalAgentInstructions() string
	SetAdditionalAgentInstructions(string)
}

// Ledger holds the pending queue and the tracked-instruction table. The
// task supervisor is its sole caller; all mutation happens under the
// supervisor's single serialization boundary, but Ledger also guards
// itself with its own lock so it can be exercised standalone in tests.
type Ledger struct {
	mu      sync.Mutex
	pending []string
	tracked map[string]*Tracked

	onExhausted func(text string)
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{tracked: make(map[string]*Tracked)}
}

// OnExhausted installs a callback fired when a tracked instruction's
// retries run out and its entry is dropped. This is what lets a
// component outside the core (the desktop notifier, §4.P) make the drop
// non-silent, without the ledger itself depending on that component.
func (l *Ledger) OnExhausted(fn func(text string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onExhausted = fn
}

// Queue inserts text into the pending queue unless it is already present
// anywhere in the queue (dedup). Priority instructions go to the head;
// others are appended.
func (l *Ledger) Queue(text string, priority bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queueLocked(text, priority)
}

func (l *Ledger) queueLocked(text string, priority bool) {
	for _, t := range l.pending {
		if t == text {
			return
		}
	}
	if priority {
		l.pending = append([]string{text}, l.pending...)
	} else {
		l.pending = append(l.pending, text)
	}
}

// QueueTracked issues a new tracked id, queues text under the same
// dedup/priority rule as Queue, records a tracking entry with the given
// retry budget, and returns the id. A negative maxRetries means
// "unspecified" and is normalized to the default of 3; a maxRetries of
// exactly zero is honored as-is, so the entry is dropped on the first
// sweep after the pending queue empties.
func (l *Ledger) QueueTracked(text string, maxRetries int, priority bool) string {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.queueLocked(text, priority)
	id := uuid.NewString()
	l.tracked[id] = &Tracked{
		ID:        id,
		Text:      text,
		Remaining: maxRetries,
		Max:       maxRetries,
		Priority:  priority,
	}
	return id
}

// Inject pops the head of the pending queue and sets it as the response's
// additional-instructions field, provided that field is currently absent.
// If the response does not implement InstructionSink, or already carries a
// value, the popped text is pushed back onto the queue head and the
// response is returned unchanged.
func (l *Ledger) Inject(response InstructionSink) InstructionSink {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return response
	}
	if response == nil {
		return response
	}
	if response.AdditionalAgentInstructions() != "" {
		return response
	}

	text := l.pending[0]
	l.pending = l.pending[1:]
	response.SetAdditionalAgentInstructions(text)
	return response
}

// Acknowledge removes the tracking entry for id. The pending queue is not
// touched — the instruction's text may already have been injected into a
// response.
func (l *Ledger) Acknowledge(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tracked, id)
}

// IsQueueEmpty reports whether the pending queue currently holds no
// instructions.
func (l *Ledger) IsQueueEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending) == 0
}

// RetrySweep re-queues every tracked instruction whose text has fallen out
// of the pending queue, decrementing its remaining-retry budget. Entries
// that reach zero remaining retries are dropped, and the OnExhausted
// callback, if installed, is called with each dropped text. Callers (the
// retry task) must only invoke this when the pending queue is empty.
func (l *Ledger) RetrySweep() {
	l.mu.Lock()
	var exhausted []string
	for id, tr := range l.tracked {
		if !l.containsLocked(tr.Text) {
			l.queueLocked(tr.Text, tr.Priority)
		}
		tr.Remaining--
		if tr.Remaining <= 0 {
			delete(l.tracked, id)
			exhausted = append(exhausted, tr.Text)
		}
	}
	hook := l.onExhausted
	l.mu.Unlock()

	if hook != nil {
		for _, text := range exhausted {
			hook(text)
		}
	}
}

func (l *Ledger) containsLocked(text string) bool {
	for _, t := range l.pending {
		if t == text {
			return true
		}
	}
	return false
}

// Len reports the current pending-queue length, for tests and
// diagnostics.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// TrackedCount reports the number of live tracked entries.
func (l *Ledger) TrackedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tracked)
}
