// internal/events/bus.go
package events

import "sync"

// Key scopes handlers to one entity and one event name. Category separates entity
// kinds that may share numeric ids (door cards, treasure cards, players).
type Key struct {
	Category string
	ID       int
	Event    string
}

// Event is what a handler receives.
type Event struct {
	Key
	Payload any
}

// Handler reacts to a fired event.
type Handler func(Event)

type binding struct {
	handle  int
	handler Handler
}

// Bus is a synchronous keyed publish/subscribe registry.
type Bus struct {
	mu         sync.Mutex
	durable    map[Key][]binding
	once       map[Key][]binding
	nextHandle int
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{
		durable: make(map[Key][]binding),
		once:    make(map[Key][]binding),
	}
}

// Bind registers a handler that runs on every Fire of key and returns its handle.
func (b *Bus) Bind(key Key, h Handler) int {
	return b.add(b.durable, key, h)
}

// BindOnce registers a handler that is dropped after its first invocation.
func (b *Bus) BindOnce(key Key, h Handler) int {
	return b.add(b.once, key, h)
}

func (b *Bus) add(m map[Key][]binding, key Key, h Handler) int {
	if h == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextHandle
	b.nextHandle++
	m[key] = append(m[key], binding{handle: handle, handler: h})
	return handle
}

// Unbind removes the handler with the given handle, wherever it is bound.
func (b *Bus) Unbind(handle int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range []map[Key][]binding{b.durable, b.once} {
		for key, list := range m {
			for i := range list {
				if list[i].handle == handle {
					m[key] = append(list[:i:i], list[i+1:]...)
					if len(m[key]) == 0 {
						delete(m, key)
					}
					return
				}
			}
		}
	}
}

// Fire runs durable handlers for key, then one-shot handlers, then forgets the
// one-shots. Handlers run without the bus lock held and may bind or fire.
func (b *Bus) Fire(key Key, payload any) {
	b.mu.Lock()
	durable := append([]binding(nil), b.durable[key]...)
	once := b.once[key]
	delete(b.once, key)
	b.mu.Unlock()

	ev := Event{Key: key, Payload: payload}
	for _, bd := range durable {
		bd.handler(ev)
	}
	for _, bd := range once {
		bd.handler(ev)
	}
}

// Rekey moves every handler bound to (category, oldID) over to (category, newID).
// Handlers already bound to the new id are kept and run first.
func (b *Bus) Rekey(category string, oldID, newID int) {
	if oldID == newID {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range []map[Key][]binding{b.durable, b.once} {
		for key, list := range m {
			if key.Category != category || key.ID != oldID {
				continue
			}
			delete(m, key)
			moved := key
			moved.ID = newID
			m[moved] = append(m[moved], list...)
		}
	}
}

// Bound reports how many handlers of either kind are registered for key.
func (b *Bus) Bound(key Key) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.durable[key]) + len(b.once[key])
}
