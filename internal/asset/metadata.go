package asset

import "time"

// LogEntryKind classifies a log entry attached to a computation.
type LogEntryKind int

const (
	LogDebug LogEntryKind = iota
	LogInfo
	LogWarning
	LogError
)

// String returns the lowercase name of the log entry kind.
func (k LogEntryKind) String() string {
	switch k {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// LogEntry is a single log line produced during evaluation.
type LogEntry struct {
	Kind      LogEntryKind
	Message   string
	Timestamp time.Time
}

// ProgressEntry describes coarse evaluation progress: Step out of Total with
// an optional human-readable message. Total of zero means indeterminate.
type ProgressEntry struct {
	Step    int
	Total   int
	Message string
}

// Metadata carries everything known about a computation besides its value.
// Unlike the value, metadata is available from the moment the query is
// accepted: during evaluation it carries status, progress and log messages as
// they arrive, and after completion the final record.
type Metadata struct {
	// Query is the query string this computation was started from.
	Query string
	// Title is a short human-readable description, derived from the query.
	Title string
	// Status mirrors the computation status at the time the metadata was read.
	Status Status
	// Message is the most recent log message, kept separately so consumers
	// can show a one-line summary without scanning the log.
	Message string
	// Log is the full evaluation log in arrival order.
	Log []LogEntry
	// Progress is the primary progress indicator.
	Progress ProgressEntry
}

// Clone returns a deep copy of the metadata. The log slice is copied so the
// clone can cross a concurrency boundary safely.
func (m Metadata) Clone() Metadata {
	out := m
	if len(m.Log) > 0 {
		out.Log = make([]LogEntry, len(m.Log))
		copy(out.Log, m.Log)
	}
	return out
}

// appendLog appends a log entry and updates the last-message field.
func (m *Metadata) appendLog(kind LogEntryKind, message string) {
	m.Log = append(m.Log, LogEntry{Kind: kind, Message: message, Timestamp: time.Now()})
	m.Message = message
}
