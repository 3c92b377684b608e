package lifecycle

import (
	"sync"
)

// Identity is the guest address of a natively-owned sub-object, used as the
// tracking key. Identity 0 is reserved and never tracked.
type Identity uint32

// Wrapper is a host-visible proxy for a natively-owned sub-object. It
// carries no ownership; Invalidate must make every later access fail without
// touching guest memory.
type Wrapper interface {
	Invalidate()
}

// Event types for wrapper lifecycle notifications.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventUnlinked
)

// Event describes a wrapper lifecycle transition.
type Event struct {
	Wrapper Wrapper
	Parent  Identity
	ID      Identity
	Type    EventType
}

// Observer receives notifications about wrapper lifecycle events.
type Observer interface {
	OnWrapperEvent(Event)
}

type entry struct {
	wrapper Wrapper
	parent  Identity
}

// Tracker maps native sub-object identity to the host wrapper standing in
// for it. It exists so a parent resource can sever every wrapper it produced
// before the engine frees their backing memory; the tracker, not the Go
// garbage collector, decides when a wrapper dies.
type Tracker struct {
	entries   map[Identity]entry
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[Identity]entry, 4),
	}
}

// Register records wrapper as the proxy for the sub-object at id, owned
// transitively by parent. Registering id 0 or a nil wrapper is a no-op.
func (t *Tracker) Register(parent, id Identity, w Wrapper) {
	if id == 0 || w == nil {
		return
	}

	t.mu.Lock()
	t.entries[id] = entry{wrapper: w, parent: parent}
	t.mu.Unlock()

	t.notify(Event{Type: EventRegistered, Parent: parent, ID: id, Wrapper: w})
}

// UnlinkAndUntrack invalidates the wrapper registered for id and forgets it.
// Safe no-op when nothing was registered for id, e.g. a sub-object that was
// never queried.
func (t *Tracker) UnlinkAndUntrack(id Identity) {
	if id == 0 {
		return
	}

	t.mu.Lock()
	e, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	t.mu.Unlock()

	if !ok {
		return
	}

	e.wrapper.Invalidate()
	t.notify(Event{Type: EventUnlinked, Parent: e.parent, ID: id, Wrapper: e.wrapper})
}

// ReleaseParent unlinks and untracks every wrapper registered under parent.
// Callers run this strictly before freeing the parent's native resource.
func (t *Tracker) ReleaseParent(parent Identity) {
	t.mu.Lock()
	var ids []Identity
	for id, e := range t.entries {
		if e.parent == parent {
			ids = append(ids, id)
		}
	}
	t.mu.Unlock()

	for _, id := range ids {
		t.UnlinkAndUntrack(id)
	}
}

// Lookup returns the wrapper registered for id.
func (t *Tracker) Lookup(id Identity) (Wrapper, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	return e.wrapper, true
}

// Len returns the number of tracked wrappers.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Each iterates over tracked wrappers until fn returns false.
func (t *Tracker) Each(fn func(Identity, Wrapper) bool) {
	t.mu.Lock()
	snapshot := make(map[Identity]entry, len(t.entries))
	for id, e := range t.entries {
		snapshot[id] = e
	}
	t.mu.Unlock()

	for id, e := range snapshot {
		if !fn(id, e.wrapper) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Tracker) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Tracker) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Tracker) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnWrapperEvent(e)
	}
}
