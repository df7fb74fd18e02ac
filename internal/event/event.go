// Package event provides a generic observer used by every component that
// publishes notifications.
package event

// Handle identifies a subscription and is used to remove it.
type Handle uint64

type subscriber[T any] struct {
	fn func(T)
	id Handle
}

// Event is a list of callbacks parameterized by payload type.
// The zero value is ready to use. Event is not safe for concurrent use;
// callers run on a single cooperative loop.
type Event[T any] struct {
	subs   []subscriber[T]
	nextID Handle
}

// Add registers fn and returns a handle for Remove.
func (e *Event[T]) Add(fn func(T)) Handle {
	e.nextID++
	e.subs = append(e.subs, subscriber[T]{id: e.nextID, fn: fn})
	return e.nextID
}

// Remove unregisters the subscription. Returns false if the handle is unknown.
func (e *Event[T]) Remove(h Handle) bool {
	for i, s := range e.subs {
		if s.id == h {
			// копируем, чтобы не портить снимок, который сейчас итерируется в Trigger
			subs := make([]subscriber[T], 0, len(e.subs)-1)
			subs = append(subs, e.subs[:i]...)
			subs = append(subs, e.subs[i+1:]...)
			e.subs = subs
			return true
		}
	}
	return false
}

// Trigger invokes every subscriber with v.
// The subscriber list is snapshotted before dispatch: callbacks added during
// dispatch are not called, callbacks removed during dispatch still are.
func (e *Event[T]) Trigger(v T) {
	if len(e.subs) == 0 {
		return
	}
	snapshot := e.subs
	for _, s := range snapshot {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (e *Event[T]) Len() int {
	return len(e.subs)
}

// Clear removes all subscribers.
func (e *Event[T]) Clear() {
	e.subs = nil
}
