package autoapply

import (
	"errors"
	"fmt"

	"github.com/atlas/autoapply/internal/types"
)

// ErrNoFieldsFilled is reported when a form was reached but nothing on it could be filled.
var ErrNoFieldsFilled = errors.New("no fields filled")

// BlockedError reports a page that needs a human before it can be filled.
type BlockedError struct {
	Status  types.ApplyStatus
	Message string
}

func (e *BlockedError) Error() string {
	return e.Message
}

// StageError wraps a failure in one step of the application flow.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
