// Package fake provides in-memory clients, channels and databoxes
// that satisfy the entity interfaces. Tests drive them with the
// exported state setters and emit helpers; every listener
// registration is counted so tests can prove when none was armed.
package fake

import (
	"sync"

	"digital.vasic.livecheck/pkg/entity"
)

// emitter dispatches named events to once and persistent
// listeners. Listeners run on the emitting goroutine, outside the
// lock.
type emitter struct {
	mu         sync.Mutex
	once       map[string][]entity.Listener
	on         map[string]map[int]entity.Listener
	nextID     int
	registered map[string]int
}

func (e *emitter) init() {
	if e.once == nil {
		e.once = make(map[string][]entity.Listener)
		e.on = make(map[string]map[int]entity.Listener)
		e.registered = make(map[string]int)
	}
}

func (e *emitter) addOnce(event string, l entity.Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	e.once[event] = append(e.once[event], l)
	e.registered[event]++
}

func (e *emitter) addOn(event string, l entity.Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.init()
	if e.on[event] == nil {
		e.on[event] = make(map[int]entity.Listener)
	}
	id := e.nextID
	e.nextID++
	e.on[event][id] = l
	e.registered[event]++

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.on[event], id)
	}
}

func (e *emitter) emit(event string, args ...any) {
	e.mu.Lock()
	e.init()
	listeners := e.once[event]
	delete(e.once, event)
	for _, l := range e.on[event] {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(args...)
	}
}

// registrations returns how many listeners were ever registered
// for event.
func (e *emitter) registrations(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registered[event]
}

// pending returns how many listeners are currently waiting for
// event.
func (e *emitter) pending(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.once[event]) + len(e.on[event])
}

func signal(fn func()) entity.Listener {
	return func(...any) { fn() }
}
