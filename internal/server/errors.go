package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a feature whose backing service is not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var ve *ErrValidation
	var ue *ErrUnavailable
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &ve), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &ue):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	msg := fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag())
	if len(fieldErrs) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(fieldErrs)-1)
	}
	return msg
}
