package asset

// Snapshot is an immutable, type-erased projection of a computation's state
// at a point in time. It is cheap to copy: the value is shared, the metadata
// is an owned deep copy. Snapshots cross the boundary between the monitoring
// goroutine and consumers; nothing in a snapshot may be mutated after
// construction.
type Snapshot struct {
	// Value is the completed result, or nil while the computation is not
	// ready. Shared ownership: never mutate the pointed-to value.
	Value *Value
	// Metadata is always present, from the earliest lifecycle stage onward.
	Metadata Metadata
	// Err is the evaluation error, or nil.
	Err error
	// Status is the computation status at snapshot time.
	Status Status
}

// HasValue reports whether the snapshot carries a completed value.
func (s Snapshot) HasValue() bool { return s.Value != nil }

// Text returns the value rendered as text, or the empty string when no value
// is present.
func (s Snapshot) Text() string {
	if s.Value == nil {
		return ""
	}
	return s.Value.Text()
}
