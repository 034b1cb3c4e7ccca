package asset

// Status describes the lifecycle stage of a computation.
type Status int

const (
	// StatusNone means no evaluation has been recorded yet.
	StatusNone Status = iota
	// StatusSubmitted means the query was accepted and queued.
	StatusSubmitted
	// StatusRunning means the evaluation is in progress.
	StatusRunning
	// StatusReady means the evaluation finished and a value is available.
	StatusReady
	// StatusError means the evaluation finished with an error.
	StatusError
	// StatusExpired means a previously ready result was invalidated
	// (for example, backing store data changed) and should be re-evaluated.
	StatusExpired
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusSubmitted:
		return "submitted"
	case StatusRunning:
		return "running"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a final outcome of an evaluation.
// Expired is not terminal: it invites re-evaluation.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// HasData reports whether a value is expected to be present for this status.
func (s Status) HasData() bool {
	return s == StatusReady
}
