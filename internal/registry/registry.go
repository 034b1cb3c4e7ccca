// Package registry holds the consumers that receive computation snapshots.
// The registry is the single resource shared between the monitoring goroutine
// and the goroutine that owns the consumers (typically the UI loop), so every
// access happens under its mutex and critical sections stay short: one lookup
// plus at most one Update call.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/liquers/liquers-go/internal/asset"
)

// Handle identifies a consumer slot. Handles are opaque, copyable and totally
// ordered; they are issued by the registry and never reused.
type Handle uint64

// Redraw is returned by a consumer's Update to indicate whether the change
// warrants re-rendering. The monitoring layer discards it; consumption
// belongs to the registry's owner.
type Redraw bool

// Consumer receives state snapshots for the computations it observes.
// Update is invoked while the registry lock is held: implementations must not
// re-enter the registry and must return quickly.
type Consumer interface {
	Update(asset.Snapshot) Redraw
}

// Registry is a mutex-guarded map from Handle to Consumer.
type Registry struct {
	mu        sync.Mutex
	next      atomic.Uint64
	consumers map[Handle]Consumer
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{consumers: make(map[Handle]Consumer)}
}

// NextHandle issues a fresh handle without registering a consumer.
func (r *Registry) NextHandle() Handle {
	return Handle(r.next.Add(1))
}

// Register binds a consumer to a previously issued handle, replacing any
// existing binding for that handle.
func (r *Registry) Register(h Handle, c Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumers[h] = c
}

// Add registers a consumer under a fresh handle and returns the handle.
func (r *Registry) Add(c Consumer) Handle {
	h := r.NextHandle()
	r.Register(h, c)
	return h
}

// Remove deletes the consumer bound to the handle. Returns false if the
// handle was not registered. After removal, deliveries to the handle miss,
// which is how monitoring of the handle auto-stops.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.consumers[h]; !ok {
		return false
	}
	delete(r.consumers, h)
	return true
}

// Deliver looks up the consumer for the handle and invokes its Update with
// the snapshot, all under the registry lock. Returns false when the handle no
// longer resolves. The redraw indicator returned by Update is discarded here.
func (r *Registry) Deliver(h Handle, snap asset.Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consumers[h]
	if !ok {
		return false
	}
	c.Update(snap)
	return true
}

// Get returns the consumer bound to the handle, or nil.
func (r *Registry) Get(h Handle) Consumer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consumers[h]
}

// Contains reports whether a consumer is bound to the handle.
func (r *Registry) Contains(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.consumers[h]
	return ok
}

// Len returns the number of registered consumers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consumers)
}

// Handles returns the registered handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Handle, 0, len(r.consumers))
	for h := range r.consumers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Each invokes fn for every registered consumer under the registry lock,
// in ascending handle order. fn must not re-enter the registry.
func (r *Registry) Each(fn func(Handle, Consumer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([]Handle, 0, len(r.consumers))
	for h := range r.consumers {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		fn(h, r.consumers[h])
	}
}
