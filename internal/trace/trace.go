// Package trace provides run-progress notifications for generation runs.
//
// The trace package implements an observer pattern that allows hosts to
// subscribe to the lifecycle of a generation run — spawn, stream
// progress, exit, finalization — without the core depending on any
// particular logging sink. The CLI host subscribes a stderr logger when
// the debug flag is set.
package trace

import (
	"sync"
	"time"
)

// EventType represents the kind of run event.
type EventType int

const (
	// RunStarted indicates the generator process was spawned.
	RunStarted EventType = iota

	// SpawnFailed indicates the generator could not be spawned.
	SpawnFailed

	// StdoutChunk indicates a stdout chunk was inserted before the marker.
	StdoutChunk

	// StderrChunk indicates a stderr chunk was accumulated.
	StderrChunk

	// RunExited indicates the exit code arrived.
	RunExited

	// MarkerInserted indicates the marker scaffold was placed.
	MarkerInserted

	// RunFinalized indicates the run reached its terminal state and the
	// scaffolding was removed or expanded into an error block.
	RunFinalized
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case RunStarted:
		return "run started"
	case SpawnFailed:
		return "spawn failed"
	case StdoutChunk:
		return "stdout chunk"
	case StderrChunk:
		return "stderr chunk"
	case RunExited:
		return "run exited"
	case MarkerInserted:
		return "marker inserted"
	case RunFinalized:
		return "run finalized"
	default:
		return "unknown"
	}
}

// Event is a single run-progress notification.
type Event struct {
	// Type is the kind of event.
	Type EventType

	// RunID identifies the generation run, when one exists.
	RunID string

	// Detail carries event-specific text: chunk sizes, exit codes,
	// failure reasons.
	Detail string

	// Time is when the event was emitted.
	Time time.Time
}

// Observer is called synchronously for each event.
type Observer func(Event)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans events out to subscribed observers.
// Delivery is synchronous, in the emitting goroutine.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[uint64]Observer)}
}

// Subscribe registers an observer for all events.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify delivers an event to all observers. A zero Time is filled in.
func (n *Notifier) Notify(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(event)
	}
}

// Emit is a convenience for Notify with the common fields.
func (n *Notifier) Emit(t EventType, runID, detail string) {
	n.Notify(Event{Type: t, RunID: runID, Detail: detail})
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}
