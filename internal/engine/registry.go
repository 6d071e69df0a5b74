package engine

import (
	"sync"

	"github.com/dm/sfm-go/internal/model"
)

// Registry holds the sensor descriptors discovered for one account, in the
// order they were first seen. Descriptors are never removed or replaced.
type Registry struct {
	mu        sync.Mutex
	order     []string
	sensors   map[string]model.SensorDescription
	listeners map[int]func(model.SensorDescription)
	nextID    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sensors:   make(map[string]model.SensorDescription),
		listeners: make(map[int]func(model.SensorDescription)),
	}
}

// Add stores desc unless its key is already known. It reports whether desc
// was added.
func (r *Registry) Add(desc model.SensorDescription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sensors[desc.Key]; ok {
		return false
	}
	r.sensors[desc.Key] = desc
	r.order = append(r.order, desc.Key)
	return true
}

// Get returns the descriptor for key.
func (r *Registry) Get(key string) (model.SensorDescription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.sensors[key]
	return d, ok
}

// All returns every descriptor in registration order.
func (r *Registry) All() []model.SensorDescription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SensorDescription, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.sensors[k])
	}
	return out
}

// Keys returns every key in registration order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Subscribe registers fn for announcements of new descriptors and returns a
// function that removes it.
func (r *Registry) Subscribe(fn func(model.SensorDescription)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// announce delivers descs to the current listeners. With no listener the
// descriptors are only stored.
func (r *Registry) announce(descs []model.SensorDescription) {
	if len(descs) == 0 {
		return
	}
	r.mu.Lock()
	fns := make([]func(model.SensorDescription), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, d := range descs {
		for _, fn := range fns {
			fn(d)
		}
	}
}

func (r *Registry) clearListeners() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.listeners)
}
