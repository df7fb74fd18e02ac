// Package messaging provides keyed publish/subscribe and the per-entity
// network message channel built on top of the raw session channel.
package messaging

import "github.com/iudanet/gophsync/internal/event"

// Keyed is the payload of catch-all subscriptions.
type Keyed[T any] struct {
	Key   string
	Value T
}

// Bus multiplexes events by message key and offers a catch-all
// subscription receiving every key. The zero value is ready to use.
type Bus[T any] struct {
	keyed map[string]*event.Event[T]
	all   event.Event[Keyed[T]]
}

// Add subscribes fn to key.
func (b *Bus[T]) Add(key string, fn func(T)) event.Handle {
	if b.keyed == nil {
		b.keyed = make(map[string]*event.Event[T])
	}
	ev, ok := b.keyed[key]
	if !ok {
		ev = &event.Event[T]{}
		b.keyed[key] = ev
	}
	return ev.Add(fn)
}

// Remove unsubscribes a handle returned by Add for the same key.
func (b *Bus[T]) Remove(key string, h event.Handle) bool {
	ev, ok := b.keyed[key]
	if !ok {
		return false
	}
	removed := ev.Remove(h)
	if ev.Len() == 0 {
		delete(b.keyed, key)
	}
	return removed
}

// AddAny subscribes fn to every key.
func (b *Bus[T]) AddAny(fn func(key string, v T)) event.Handle {
	return b.all.Add(func(k Keyed[T]) { fn(k.Key, k.Value) })
}

// RemoveAny unsubscribes a handle returned by AddAny.
func (b *Bus[T]) RemoveAny(h event.Handle) bool {
	return b.all.Remove(h)
}

// Trigger calls the subscribers of key, then the catch-all subscribers.
func (b *Bus[T]) Trigger(key string, v T) {
	if ev, ok := b.keyed[key]; ok {
		ev.Trigger(v)
	}
	b.all.Trigger(Keyed[T]{Key: key, Value: v})
}

// Clear drops every subscription.
func (b *Bus[T]) Clear() {
	b.keyed = nil
	b.all.Clear()
}
