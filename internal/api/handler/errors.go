package handler

import (
	"net/http"

	"github.com/kprao/rummyscore/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeGameNotFound       = apierr.CodeGameNotFound
	CodePinMismatch        = apierr.CodePinMismatch
	CodeValidationRejected = apierr.CodeValidationRejected
	CodeCapacityExceeded   = apierr.CodeCapacityExceeded
	CodeMinimumPlayers     = apierr.CodeMinimumPlayers
	CodeBackendUnavailable = apierr.CodeBackendUnavailable
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewPinMismatchError creates a forbidden error for a wrong edit PIN
func NewPinMismatchError() error {
	return apierr.NewPinMismatchError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
