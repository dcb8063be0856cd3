// Package event provides a small synchronous/async event dispatcher.
//
// Auth state changes are published through it:
//
//	unsubscribe := bus.Listen(auth.EventName, func(p interface{}) {
//	    change := p.(auth.Change)
//	    ...
//	})
//	defer unsubscribe()
package event

import (
	"sync"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

type listener struct {
	id uint64
	fn Handler
}

// Dispatcher routes named events to listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]listener
	wg       sync.WaitGroup
}

// New returns an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: map[string][]listener{}}
}

// Listen registers handler for event and returns a function removing it.
func (d *Dispatcher) Listen(event string, handler Handler) (unsubscribe func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[event] = append(d.handlers[event], listener{id: id, fn: handler})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			ls := d.handlers[event]
			for i, l := range ls {
				if l.id == id {
					d.handlers[event] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		})
	}
}

func (d *Dispatcher) snapshot(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[event]))
	for i, l := range d.handlers[event] {
		hs[i] = l.fn
	}
	return hs
}

// Fire dispatches synchronously, in registration order.
func (d *Dispatcher) Fire(event string, payload interface{}) {
	for _, h := range d.snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches to every listener on its own goroutine and returns
// immediately. Wait blocks until they finish.
func (d *Dispatcher) FireAsync(event string, payload interface{}) {
	for _, h := range d.snapshot(event) {
		d.wg.Add(1)
		go func(h Handler) {
			defer d.wg.Done()
			h(payload)
		}(h)
	}
}

// Wait blocks until every FireAsync handler has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Count returns the number of listeners for event.
func (d *Dispatcher) Count(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[event])
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]listener{}
}
