package answers

import "fmt"

// GenerationError reports a failed answer generation.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("answer generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("answer generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
