package asset

import (
	"fmt"
	"strconv"
)

// Value is an immutable evaluation result shared between the evaluator, the
// monitoring layer and consumers. Once constructed it is never mutated, so a
// single *Value may be referenced from any number of snapshots concurrently.
type Value struct {
	data any
}

// NewTextValue wraps a string.
func NewTextValue(s string) *Value { return &Value{data: s} }

// NewBytesValue wraps a byte slice. The caller must not modify the slice
// after handing it over.
func NewBytesValue(b []byte) *Value { return &Value{data: b} }

// NewAnyValue wraps an arbitrary result, such as the output of an expression
// evaluation. The wrapped value must not be mutated afterwards.
func NewAnyValue(v any) *Value { return &Value{data: v} }

// Raw returns the wrapped value.
func (v *Value) Raw() any { return v.data }

// Text renders the value as a string. Byte slices are interpreted as UTF-8;
// other types use their default formatting.
func (v *Value) Text() string {
	switch d := v.data.(type) {
	case string:
		return d
	case []byte:
		return string(d)
	case float64:
		return strconv.FormatFloat(d, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Bytes returns the value as a byte slice.
func (v *Value) Bytes() []byte {
	switch d := v.data.(type) {
	case []byte:
		return d
	case string:
		return []byte(d)
	default:
		return []byte(v.Text())
	}
}
