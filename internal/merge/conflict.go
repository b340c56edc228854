package merge

import (
	"errors"
	"fmt"
)

// Conflict records two irreconcilable values at one document path.
// Conflicts are collected by the assembler rather than raised
// synchronously, so one failing field never blocks the rest of a
// document merge.
type Conflict struct {
	// Path is the concrete write path the conflict occurred at.
	Path string

	// Existing is the value already stored at the path.
	Existing any

	// Incoming is the value that was not accepted.
	Incoming any

	// Source names the entry point that produced the incoming value.
	Source string
}

// Error implements the error interface.
func (c *Conflict) Error() string {
	if c.Source != "" {
		return fmt.Sprintf("merge conflict at %s: kept %v, rejected %v (source=%s)",
			c.Path, c.Existing, c.Incoming, c.Source)
	}
	return fmt.Sprintf("merge conflict at %s: kept %v, rejected %v", c.Path, c.Existing, c.Incoming)
}

// IsConflict returns true if the error is a merge conflict.
// Uses errors.As to handle wrapped errors.
func IsConflict(err error) bool {
	var c *Conflict
	return errors.As(err, &c)
}
