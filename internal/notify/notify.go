// Package notify provides a single-slot change notification channel with
// latest-wins semantics. A producer signals "something changed"; a receiver
// observes at most one pending change regardless of how many signals arrived
// since it last checked. This bounds memory under fast producers and slow
// consumers: there is no queue to grow.
package notify

import "sync"

// Signal is the producer side of a change notification channel.
// It is safe for concurrent use by multiple producers.
type Signal struct {
	mu      sync.Mutex
	version uint64
}

// NewSignal creates a new notification signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Notify records that a change occurred. Consecutive calls between two
// receiver checks coalesce into a single observed change.
func (s *Signal) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
}

// Subscribe returns a new Receiver observing this signal. The receiver starts
// with the change flag clear: only changes after subscription are observed.
func (s *Signal) Subscribe() *Receiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Receiver{signal: s, seen: s.version}
}

// SubscribePending returns a Receiver whose change flag is already set, so the
// first Changed call reports true. Used when the subscriber must observe the
// current state at least once even if nothing changes afterwards. The pending
// state belongs to the receiver alone; the signal and its other receivers are
// untouched.
func (s *Signal) SubscribePending() *Receiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Receiver{signal: s, seen: s.version, pending: true}
}

func (s *Signal) currentVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Receiver is the consumer side of a change notification channel.
// A Receiver belongs to a single consumer and is not safe for concurrent use.
type Receiver struct {
	signal  *Signal
	seen    uint64
	pending bool
}

// Changed reports whether the signal fired since the last call, and marks any
// pending change as seen. Non-blocking. Multiple underlying changes collapse
// into one true result.
func (r *Receiver) Changed() bool {
	v := r.signal.currentVersion()
	if r.pending || v != r.seen {
		r.pending = false
		r.seen = v
		return true
	}
	return false
}

// Peek reports whether a change is pending without consuming it.
func (r *Receiver) Peek() bool {
	return r.pending || r.signal.currentVersion() != r.seen
}
