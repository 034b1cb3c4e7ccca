// Package tui implements the interactive terminal frontend. Each console
// panel is a passive snapshot consumer: the coordinator pushes state into it
// and the render loop draws whatever the panel last received.
package tui

import (
	"sync"

	"github.com/liquers/liquers-go/internal/asset"
	"github.com/liquers/liquers-go/internal/registry"
)

// Console is a query console panel. It receives snapshots pushed by the
// coordinator and keeps only the latest state: no channels, no background
// work, no polling of its own.
type Console struct {
	mu sync.Mutex

	query    string
	value    *asset.Value
	metadata asset.Metadata
	err      error
	status   asset.Status
	dirty    bool
	updates  int
}

// NewConsole creates a console for the given query.
func NewConsole(query string) *Console {
	return &Console{query: query, status: asset.StatusNone}
}

// Update stores the snapshot and reports that a redraw is needed. Called by
// the coordinator while the registry lock is held; it must stay cheap and
// must not touch the registry.
func (c *Console) Update(snap asset.Snapshot) registry.Redraw {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = snap.Value
	c.metadata = snap.Metadata
	c.err = snap.Err
	c.status = snap.Status
	c.dirty = true
	c.updates++
	return true
}

// SetQuery records the query the console is now observing. Called when a
// replacement request is submitted for the console's handle.
func (c *Console) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
}

// state returns a consistent copy of the console's display state.
func (c *Console) state() consoleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return consoleState{
		query:    c.query,
		value:    c.value,
		metadata: c.metadata,
		err:      c.err,
		status:   c.status,
		updates:  c.updates,
	}
}

// TakeDirty reports whether the console changed since the last call and
// clears the flag.
func (c *Console) TakeDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dirty
	c.dirty = false
	return d
}

// consoleState is an immutable copy of a console's display state.
type consoleState struct {
	query    string
	value    *asset.Value
	metadata asset.Metadata
	err      error
	status   asset.Status
	updates  int
}
