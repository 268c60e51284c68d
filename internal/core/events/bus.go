package events

import (
	"fmt"
	"log"
	"sync"
	"time"
	"weak"
)

// Subscription pairs a weakly-held subscriber with the event kinds it
// cares about. Timer subscriptions additionally carry an interval and the
// next scheduled fire time. A subscription is alive only while its
// weakref still resolves; the bus never retains a strong reference to the
// subscriber.
type Subscription struct {
	name     string
	resolve  func() Task
	kinds    Kind
	interval time.Duration
	nextFire time.Time
}

// alive reports whether the underlying subscriber is still reachable.
func (s *Subscription) alive() (Task, bool) {
	t := s.resolve()
	return t, t != nil
}

// Bus holds the live subscription list and dispatches events to it in
// subscription order, sequentially. Its own lock guards the subscription
// list and is released before subscriber callbacks run. It is the sole
// owner of F's mutable state; the task supervisor is the only intended
// caller.
type Bus struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers subscriber for the given kinds, holding only a weak
// reference to it. If kinds includes Timer, interval must be positive; the
// subscription's first fire time is now + interval. subscriber must be a
// pointer to a concrete type T whose pointer type implements Task —
// weak.Pointer requires a concrete pointee.
func Subscribe[T any, PT interface {
	*T
	Task
}](bus *Bus, subscriber PT, kinds Kind, interval time.Duration) (*Subscription, error) {
	if kinds.Has(Timer) && interval <= 0 {
		return nil, fmt.Errorf("events: timer subscription requires a positive interval")
	}
	weakPtr := weak.Make((*T)(subscriber))
	resolve := func() Task {
		p := weakPtr.Value()
		if p == nil {
			return nil
		}
		return PT(p)
	}
	sub := &Subscription{
		name:    subscriber.Name(),
		resolve: resolve,
		kinds:   kinds,
	}
	if kinds.Has(Timer) {
		sub.interval = interval
		sub.nextFire = now().Add(interval)
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subs = append(bus.subs, sub)
	return sub, nil
}

// now is a seam so tests can't accidentally depend on wall-clock behavior
// beyond what's under test; production always uses time.Now.
var now = time.Now

// compactLocked drops subscriptions whose weakref no longer resolves.
// Caller must hold bus.mu.
func (b *Bus) compactLocked() {
	live := b.subs[:0]
	for _, s := range b.subs {
		if _, ok := s.alive(); ok {
			live = append(live, s)
		}
	}
	b.subs = live
}

// Dispatch compacts dead subscriptions, then delivers kinds/data to every
// live subscription whose kinds overlap, in subscription order. A
// subscriber callback that panics is caught and logged; dispatch continues
// to the remaining subscribers.
func (b *Bus) Dispatch(kinds Kind, data Data) {
	b.mu.Lock()
	b.compactLocked()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if s.kinds&kinds == 0 {
			continue
		}
		task, ok := s.alive()
		if !ok {
			continue
		}
		dispatchOne(task, kinds, data)
	}
}

func dispatchOne(task Task, kinds Kind, data Data) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EVENTS] subscriber %q panicked handling kinds=%#x: %v", task.Name(), kinds, r)
		}
	}()
	task.HandleEvent(kinds, data)
}

// Tick inspects timer subscriptions and dispatches Timer to any whose
// nextFire has elapsed, advancing nextFire by interval. Other kind bits
// may be combined into the same dispatch by the caller's data; here Tick
// always dispatches the bare Timer bit.
func (b *Bus) Tick() {
	b.mu.Lock()
	b.compactLocked()
	t := now()
	var due []*Subscription
	for _, s := range b.subs {
		if s.kinds.Has(Timer) && !s.nextFire.After(t) {
			s.nextFire = s.nextFire.Add(s.interval)
			due = append(due, s)
		}
	}
	b.mu.Unlock()

	for _, s := range due {
		task, ok := s.alive()
		if !ok {
			continue
		}
		dispatchOne(task, Timer, Data{})
	}
}

// Len reports the current (uncompacted) subscription count; exposed for
// tests and diagnostics only.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
