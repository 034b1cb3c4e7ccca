// Package errors provides centralized error definitions for the liquers
// codebase: sentinel errors, domain error types with context, and
// classification helpers.
//
// Domain-specific errors represent errors from specific subsystems:
//   - ParseError: a query string could not be parsed into a pipeline
//   - CommandError: a pipeline step failed during evaluation
//   - StoreError: a key operation on the data store failed
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrKeyNotFound) { ... }
//
//	var perr *errors.ParseError
//	if errors.As(err, &perr) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrKeyNotFound indicates a store key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnknownCommand indicates a query names a command that is not
	// registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEmptyQuery indicates an empty or blank query string.
	ErrEmptyQuery = errors.New("empty query")
)

// Re-export standard helpers so callers only need this package.
var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
)

// ParseError indicates a query string could not be parsed. Position is the
// 1-based index of the offending action, or 0 when the whole query is at
// fault.
type ParseError struct {
	Query    string
	Position int
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("parsing %q: action %d: %s", e.Query, e.Position, e.Reason)
	}
	return fmt.Sprintf("parsing %q: %s", e.Query, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError for a whole query.
func NewParseError(query, reason string) *ParseError {
	return &ParseError{Query: query, Reason: reason}
}

// NewParseErrorAt creates a ParseError for a specific action.
func NewParseErrorAt(query string, position int, reason string) *ParseError {
	return &ParseError{Query: query, Position: position, Reason: reason}
}

// CommandError indicates a pipeline step failed during evaluation. Step is
// the 1-based position of the action in its pipeline.
type CommandError struct {
	Command string
	Step    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError creates a CommandError wrapping the step failure.
func NewCommandError(command string, step int, err error) *CommandError {
	return &CommandError{Command: command, Step: step, Err: err}
}

// StoreError indicates a key operation on the data store failed.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a StoreError for an operation on a key.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsNotFound reports whether err is a missing-key error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsParseError reports whether err originated in query parsing. Parse
// failures are permanent: resubmitting the same query cannot succeed.
func IsParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}
