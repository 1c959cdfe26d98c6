package convert

import (
	"fmt"
	"strings"
)

// ParseError reports a catalog that is not a valid JSON object after
// comment lines have been removed.
type ParseError struct {
	Path string
	// Line and Column locate the problem in the source file, 0 if unknown.
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a source that cannot be read or a destination that cannot
// be created or written.
type IOError struct {
	// Op is "read" or "write".
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CollisionError is returned under the CollisionFail policy when several keys
// map to the same resource name.
type CollisionError struct {
	Path  string
	Names []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: duplicate resource names: %s", e.Path, strings.Join(e.Names, ", "))
}
