// Package asset models asynchronous computations and their observable state.
// An Asset is the mutable record of one evaluation; a Ref is a shared handle
// to it; a Snapshot is an immutable projection safe to hand to consumers on
// other goroutines. Every state change fires the asset's notification signal
// so observers can re-read the authoritative state.
package asset

import (
	"sync"

	"github.com/google/uuid"

	"github.com/liquers/liquers-go/internal/notify"
)

// Asset holds the state of one computation. All access goes through Ref,
// which serializes reads and writes with the asset's mutex. The evaluator is
// the only writer; any number of goroutines may read.
type Asset struct {
	mu       sync.Mutex
	id       string
	status   Status
	value    *Value
	err      error
	metadata Metadata
	signal   *notify.Signal
}

// New creates an asset for the given query in StatusNone.
func New(query string) *Asset {
	return &Asset{
		id:     uuid.NewString(),
		status: StatusNone,
		metadata: Metadata{
			Query:  query,
			Title:  query,
			Status: StatusNone,
		},
		signal: notify.NewSignal(),
	}
}

// Ref returns a shared handle to the asset.
func (a *Asset) Ref() *Ref { return &Ref{asset: a} }

// Ref is a shared, cheaply copyable handle to an in-flight or completed
// computation. The same Ref may be held by the evaluator's cache and several
// monitoring entries at once; dropping a Ref requires no cleanup.
type Ref struct {
	asset *Asset
}

// ID returns the unique identifier of the underlying asset.
func (r *Ref) ID() string {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return r.asset.id
}

// Query returns the query string the asset was created from.
func (r *Ref) Query() string {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return r.asset.metadata.Query
}

// Status returns the current computation status.
func (r *Ref) Status() Status {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return r.asset.status
}

// TryValue returns the completed value without blocking. The second result is
// false while the value is not yet (or no longer) available.
func (r *Ref) TryValue() (*Value, bool) {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	if r.asset.value == nil {
		return nil, false
	}
	return r.asset.value, true
}

// Metadata returns a copy of the asset metadata. Always available, even
// before evaluation starts.
func (r *Ref) Metadata() Metadata {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return r.asset.metadata.Clone()
}

// Err returns the evaluation error, or nil.
func (r *Ref) Err() error {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return r.asset.err
}

// Subscribe returns a change notification receiver. The receiver starts with
// a pending change so that subscribers observe the current state at least
// once even if the computation never progresses further.
func (r *Ref) Subscribe() *notify.Receiver {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return r.asset.signal.SubscribePending()
}

// Snapshot builds an immutable projection of the asset's current state.
// Pure and non-blocking: if the value is not ready it is simply nil and the
// caller relies on future notifications to look again.
func (r *Ref) Snapshot() Snapshot {
	r.asset.mu.Lock()
	defer r.asset.mu.Unlock()
	return Snapshot{
		Value:    r.asset.value,
		Metadata: r.asset.metadata.Clone(),
		Err:      r.asset.err,
		Status:   r.asset.status,
	}
}

// SetStatus transitions the asset to the given status and notifies observers.
// A transition to the same status is a no-op.
func (r *Ref) SetStatus(s Status) {
	r.asset.mu.Lock()
	if r.asset.status == s {
		r.asset.mu.Unlock()
		return
	}
	r.asset.status = s
	r.asset.metadata.Status = s
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// Finish records a successful result, moves the asset to StatusReady and
// notifies observers.
func (r *Ref) Finish(v *Value) {
	r.asset.mu.Lock()
	r.asset.value = v
	r.asset.err = nil
	r.asset.status = StatusReady
	r.asset.metadata.Status = StatusReady
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// Fail records an evaluation error, moves the asset to StatusError and
// notifies observers. The value is cleared: an errored computation exposes no
// partial result.
func (r *Ref) Fail(err error) {
	r.asset.mu.Lock()
	r.asset.value = nil
	r.asset.err = err
	r.asset.status = StatusError
	r.asset.metadata.Status = StatusError
	r.asset.metadata.appendLog(LogError, err.Error())
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// Expire marks a completed asset as stale, keeping the old value visible
// until a re-evaluation replaces it. Observers are notified.
func (r *Ref) Expire() {
	r.asset.mu.Lock()
	if r.asset.status != StatusReady {
		r.asset.mu.Unlock()
		return
	}
	r.asset.status = StatusExpired
	r.asset.metadata.Status = StatusExpired
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// Log appends an entry to the evaluation log and notifies observers.
func (r *Ref) Log(kind LogEntryKind, message string) {
	r.asset.mu.Lock()
	r.asset.metadata.appendLog(kind, message)
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// SetProgress updates the primary progress indicator and notifies observers.
func (r *Ref) SetProgress(step, total int, message string) {
	r.asset.mu.Lock()
	r.asset.metadata.Progress = ProgressEntry{Step: step, Total: total, Message: message}
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// SetTitle sets the human-readable title in the metadata.
func (r *Ref) SetTitle(title string) {
	r.asset.mu.Lock()
	r.asset.metadata.Title = title
	r.asset.mu.Unlock()
	r.asset.signal.Notify()
}

// NewErrorRef creates a ref that already carries an error. Used when a query
// fails synchronously (for example, a parse error): the caller still gets a
// valid handle and the error travels the ordinary snapshot path.
func NewErrorRef(query string, err error) *Ref {
	ref := New(query).Ref()
	ref.Fail(err)
	return ref
}
