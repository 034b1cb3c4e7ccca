// Package monitor coordinates asynchronous query evaluation with snapshot
// delivery to registered consumers. A single-goroutine Coordinator drains
// observation requests, drives evaluation through an Evaluator, watches
// change notifications and pushes immutable snapshots into the consumer
// registry, automatically stopping observation when a consumer disappears.
package monitor

import (
	"context"
	"time"

	"github.com/liquers/liquers-go/internal/asset"
	"github.com/liquers/liquers-go/internal/evaluator"
	"github.com/liquers/liquers-go/internal/logging"
	"github.com/liquers/liquers-go/internal/notify"
	"github.com/liquers/liquers-go/internal/registry"
)

// defaultRequestBuffer sizes the inbound request channel. Submissions beyond
// a full buffer are rejected rather than blocked on.
const defaultRequestBuffer = 256

// Request asks the coordinator to evaluate a query and push snapshot updates
// to the consumer registered under Handle.
type Request struct {
	Handle registry.Handle
	Query  string
}

// entry pairs a computation handle with its notification receiver. One entry
// exists per observed consumer handle; entries are owned exclusively by the
// coordinator goroutine and need no locking.
type entry struct {
	ref        *asset.Ref
	rx         *notify.Receiver
	lastStatus asset.Status
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRequestBuffer sets the inbound request channel capacity.
func WithRequestBuffer(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.requests = make(chan Request, n)
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// Coordinator owns the monitoring map and the request intake. Cycle must be
// called from a single goroutine; Submit may be called from any goroutine.
type Coordinator struct {
	evaluator evaluator.Evaluator
	consumers *registry.Registry
	requests  chan Request
	entries   map[registry.Handle]*entry
	logger    *logging.Logger
}

// New creates a Coordinator delivering snapshots from ev to consumers in reg.
func New(ev evaluator.Evaluator, reg *registry.Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		evaluator: ev,
		consumers: reg,
		requests:  make(chan Request, defaultRequestBuffer),
		entries:   make(map[registry.Handle]*entry),
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit enqueues an observation request without blocking. Returns false if
// the request buffer is full; the caller may retry on a later tick.
func (c *Coordinator) Submit(req Request) bool {
	select {
	case c.requests <- req:
		return true
	default:
		c.logger.Warn("request buffer full, request dropped",
			"handle", uint64(req.Handle), "query", req.Query)
		return false
	}
}

// Cycle runs one coordination cycle: it first drains all pending requests,
// then polls every monitoring entry for changes. The two phases never
// interleave, so a request and a poll for the same handle within one cycle
// cannot race each other. Cycle never blocks and failure on one handle never
// prevents progress on the others.
func (c *Coordinator) Cycle() {
	c.drainRequests()
	c.pollEntries()
}

// drainRequests processes every request queued since the previous cycle.
// For each request it starts (or joins) the evaluation, subscribes to change
// notifications and delivers an initial snapshot. The entry is stored only if
// the initial delivery found the consumer; a request for a handle that is
// already observed replaces the old entry, dropping the superseded
// computation handle without any cancellation signal.
func (c *Coordinator) drainRequests() {
	for {
		select {
		case req := <-c.requests:
			c.handleRequest(req)
		default:
			return
		}
	}
}

func (c *Coordinator) handleRequest(req Request) {
	log := c.logger.WithHandle(uint64(req.Handle)).WithQuery(req.Query)

	// Evaluate never fails out: a bad query yields an error-carrying handle
	// and the error travels the ordinary snapshot path.
	ref := c.evaluator.Evaluate(req.Query)
	if ref == nil {
		log.Error("evaluator returned no handle, request dropped")
		return
	}

	rx := ref.Subscribe()
	// The subscription starts pending; the initial delivery below covers the
	// current state, so consume the pending flag to avoid a duplicate
	// delivery on the next poll. Consuming must happen before the snapshot
	// is read: a transition landing in between stays pending for the next
	// poll, which at worst re-delivers the same state once. Reading first
	// would let such a transition be consumed unseen, and a terminal one
	// never notifies again.
	rx.Changed()
	snap := ref.Snapshot()

	if !c.consumers.Deliver(req.Handle, snap) {
		// Delivery just proved the handle no longer resolves, so a prior
		// entry for it can never deliver either; drop it now rather than
		// waiting for a notification that a terminal computation would
		// never send. The superseded computation may still run to
		// completion unobserved and land in the evaluator cache.
		if _, ok := c.entries[req.Handle]; ok {
			delete(c.entries, req.Handle)
			log.Debug("monitoring auto-stopped", "reason", "consumer gone on replacement")
		}
		log.Debug("consumer gone before initial delivery, request discarded")
		return
	}

	if _, replaced := c.entries[req.Handle]; replaced {
		log.Debug("replacing monitoring entry")
	}
	c.entries[req.Handle] = &entry{ref: ref, rx: rx, lastStatus: snap.Status}
	log.Debug("monitoring started", "status", snap.Status.String())
}

// pollEntries checks every monitoring entry for a change notification and
// delivers a fresh snapshot for each changed one. Entries whose delivery
// misses are removed after the scan; this is the sole auto-stop site.
func (c *Coordinator) pollEntries() {
	var remove []registry.Handle

	for handle, e := range c.entries {
		if e.ref == nil || e.rx == nil {
			// Invariant violation; drop the entry defensively and move on.
			c.logger.Error("monitoring entry has no computation handle, dropping",
				"handle", uint64(handle))
			remove = append(remove, handle)
			continue
		}

		if !e.rx.Changed() {
			continue
		}

		// The notification carries no payload; re-read the authoritative
		// state. Changes between the notification and this read coalesce
		// into the snapshot: the final state is always observed.
		snap := e.ref.Snapshot()

		if e.lastStatus.Terminal() && !snap.Status.Terminal() && snap.Status != asset.StatusExpired {
			// Status must not regress while the same entry is monitored.
			// Deliver the authoritative state anyway; replacement is the only
			// legitimate path back to an earlier status.
			c.logger.Error("status regressed on monitored computation",
				"handle", uint64(handle),
				"from", e.lastStatus.String(), "to", snap.Status.String())
		}
		e.lastStatus = snap.Status

		if !c.consumers.Deliver(handle, snap) {
			remove = append(remove, handle)
		}
	}

	for _, handle := range remove {
		delete(c.entries, handle)
		c.logger.Debug("monitoring auto-stopped", "handle", uint64(handle))
	}
}

// Run drives Cycle on a ticker until the context is cancelled. Intended for
// headless use; interactive hosts call Cycle from their own event loop.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cycle()
		}
	}
}

// IsMonitored reports whether a monitoring entry exists for the handle.
func (c *Coordinator) IsMonitored(h registry.Handle) bool {
	_, ok := c.entries[h]
	return ok
}

// Monitored returns the handles with active monitoring entries.
func (c *Coordinator) Monitored() []registry.Handle {
	out := make([]registry.Handle, 0, len(c.entries))
	for h := range c.entries {
		out = append(out, h)
	}
	return out
}

// MonitoredRef returns the computation handle observed for h, or nil.
func (c *Coordinator) MonitoredRef(h registry.Handle) *asset.Ref {
	if e, ok := c.entries[h]; ok {
		return e.ref
	}
	return nil
}
