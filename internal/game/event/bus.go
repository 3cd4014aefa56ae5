package event

import "sync"

// Publisher accepts notifications.
type Publisher interface {
	Publish(ev Event)
}

// Listener receives notifications from a Bus.
type Listener interface {
	Notify(ev Event)
}

// ListenerFunc adapts a function into a Listener.
type ListenerFunc func(ev Event)

// Notify calls f(ev).
func (f ListenerFunc) Notify(ev Event) { f(ev) }

type subscription struct {
	id       uint64
	listener Listener
}

// Bus delivers every published event to its listeners, synchronously and in
// subscription order. Subscribe and unsubscribe are safe from any goroutine;
// listeners run on the publishing goroutine and must not block.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// NewBus returns a Bus with no listeners.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds l and returns a function that removes it. The returned
// function is idempotent.
//
// Precondition: l must not be nil.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: l})
	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers ev to a snapshot of the current listeners.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		s.listener.Notify(ev)
	}
}

// Recorder is a Listener that keeps every event it receives. Tests and tools
// use it to inspect emitted notifications.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify appends ev.
func (r *Recorder) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Publish appends ev, letting a Recorder stand in for a Bus.
func (r *Recorder) Publish(ev Event) { r.Notify(ev) }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events of kind k in arrival order.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Kind() == k {
			out = append(out, ev)
		}
	}
	return out
}

// Cues returns the recorded cues of the given kind.
func (r *Recorder) Cues(kind CueKind) []Cue {
	var out []Cue
	for _, ev := range r.OfKind(KindCue) {
		if c := ev.(Cue); c.Cue == kind {
			out = append(out, c)
		}
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
