package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodePinMismatch        = "PIN_MISMATCH"
	CodeValidationRejected = "VALIDATION_REJECTED"
	CodeCapacityExceeded   = "CAPACITY_EXCEEDED"
	CodeMinimumPlayers     = "MINIMUM_PLAYERS"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound), errors.Is(err, syncgw.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrInvalidPIN):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationRejected, "PIN must be four digits"}}
	case errors.Is(err, model.ErrMalformedSnapshot), errors.Is(err, model.ErrIndexOutOfRange):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeValidationRejected, "Snapshot failed validation"}}
	case errors.Is(err, model.ErrCapacityExceeded):
		return &httpError{http.StatusConflict, APIError{CodeCapacityExceeded, "Player limit reached"}}
	case errors.Is(err, model.ErrMinimumPlayers):
		return &httpError{http.StatusConflict, APIError{CodeMinimumPlayers, "A game needs at least two players"}}
	case errors.Is(err, syncgw.ErrUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeBackendUnavailable, "Sync backend unavailable"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewPinMismatchError creates a forbidden error for a wrong edit PIN
func NewPinMismatchError() error {
	return &httpError{http.StatusForbidden, APIError{CodePinMismatch, "Edit PIN does not match"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
