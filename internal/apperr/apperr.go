// Package apperr provides coded domain errors shared by the game core and its adapters.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeLengthMismatch    Code = "LENGTH_MISMATCH"
	CodeInvalidGuess      Code = "INVALID_GUESS"
	CodeInvalidWord       Code = "INVALID_WORD"
	CodeAttemptsExhausted Code = "ATTEMPTS_EXHAUSTED"
	CodePowerUpExhausted  Code = "POWERUP_EXHAUSTED"
	CodeInvalidPowerUp    Code = "INVALID_POWERUP"
	CodeNoActiveSession   Code = "NO_ACTIVE_SESSION"
	CodeNoWordsAvailable  Code = "NO_WORDS_AVAILABLE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// Sentinels for errors.Is. Matching is by code, so any *Error carrying the
// same code (whatever its message) satisfies errors.Is against these.
var (
	ErrLengthMismatch    = New(CodeLengthMismatch, "guess length does not match word length")
	ErrInvalidGuess      = New(CodeInvalidGuess, "invalid guess")
	ErrInvalidWord       = New(CodeInvalidWord, "not in word list")
	ErrAttemptsExhausted = New(CodeAttemptsExhausted, "maximum attempts reached")
	ErrPowerUpExhausted  = New(CodePowerUpExhausted, "power-up exhausted")
	ErrInvalidPowerUp    = New(CodeInvalidPowerUp, "unknown power-up")
	ErrNoActiveSession   = New(CodeNoActiveSession, "no active game found")
	ErrNoWordsAvailable  = New(CodeNoWordsAvailable, "no words available for this level")
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrConflict          = New(CodeConflict, "concurrent update conflict")
)

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HTTPStatus maps a code to the status the HTTP adapter responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeLengthMismatch, CodeInvalidGuess, CodeInvalidWord, CodeInvalidPowerUp:
		return http.StatusBadRequest
	case CodeAttemptsExhausted, CodePowerUpExhausted, CodeConflict:
		return http.StatusConflict
	case CodeNoActiveSession, CodeNotFound:
		return http.StatusNotFound
	case CodeNoWordsAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
