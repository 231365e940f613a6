package notify

import "sync"

// Listener defines a callback that reacts to notifications.
type Listener func(Notification)

// Observer is the interface form of Listener for types that prefer a method.
type Observer interface {
	Notify(Notification)
}

type subscription struct {
	handle   int
	kind     Kind // empty = all kinds
	callback Listener
}

// Bus provides synchronous publish/subscribe with optional kind filtering.
// Listeners are invoked in subscription order.
type Bus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener for all notifications and returns a handle.
func (bus *Bus) Subscribe(listener Listener) int {
	return bus.subscribe("", listener)
}

// SubscribeKind registers a listener for one notification kind.
func (bus *Bus) SubscribeKind(kind Kind, listener Listener) int {
	return bus.subscribe(kind, listener)
}

// SubscribeObserver registers an Observer for all notifications.
func (bus *Bus) SubscribeObserver(obs Observer) int {
	if obs == nil {
		return -1
	}
	return bus.subscribe("", obs.Notify)
}

func (bus *Bus) subscribe(kind Kind, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, kind: kind, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *Bus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, s := range bus.subs {
		if s.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (bus *Bus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Publish delivers n to every matching listener synchronously.
// The subscription list is copied first so listeners may subscribe or unsubscribe.
func (bus *Bus) Publish(n Notification) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subs))
	copy(subs, bus.subs)
	bus.mu.RUnlock()

	for _, s := range subs {
		if s.kind == "" || s.kind == n.Kind {
			s.callback(n)
		}
	}
}

// PublishBatch publishes notifications in order.
func (bus *Bus) PublishBatch(ns []Notification) {
	for _, n := range ns {
		bus.Publish(n)
	}
}
