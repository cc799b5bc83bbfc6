package browser

import (
	"errors"
	"fmt"
)

// Error represents a failed browser operation.
type Error struct {
	Op      string
	Locator string
	Cause   error
}

func (e *Error) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("browser %s %s: %v", e.Op, e.Locator, e.Cause)
	}
	return fmt.Sprintf("browser %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrNotFound is the cause reported when a locator matches nothing.
var ErrNotFound = errors.New("element not found")
