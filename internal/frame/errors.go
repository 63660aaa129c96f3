package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrLengthMismatch is returned when columns of different lengths are combined.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// TypeError indicates a value that cannot be represented in the requested kind.
type TypeError struct {
	Column string
	Kind   Kind
	Row    int
	Value  string
	Err    error
}

func (e *TypeError) Error() string {
	if e.Value == "" && e.Row < 0 {
		return fmt.Sprintf("type error: column %q cannot hold %s values: %v", e.Column, e.Kind, e.Err)
	}
	return fmt.Sprintf("type error: column %q row %d: cannot convert %q to %s: %v", e.Column, e.Row, e.Value, e.Kind, e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }

// ParseError indicates a value that matched no recognized date form.
type ParseError struct {
	Column  string
	Row     int
	Value   string
	Pattern string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: column %q row %d: %q does not match %s", e.Column, e.Row, e.Value, e.Pattern)
}

// ValueError indicates input outside the domain of a transform, e.g. a
// non-positive value handed to Box-Cox.
type ValueError struct {
	Column string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("value error: column %q: %s", e.Column, e.Reason)
}
