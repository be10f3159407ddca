// Package apperr defines the error taxonomy shared by the signing services
// and the mapping from domain errors to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrQuotaExceeded        = errors.New("signature quota reached for this period")
	ErrSubscriptionExpired  = errors.New("subscription expired")
	ErrInvitationExpired    = errors.New("invitation expired")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CryptoError wraps an encryption, decryption or signature failure.
type CryptoError struct {
	Op    string
	Cause error
}

func (e *CryptoError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Cause.Error()
	}
	return e.Op
}

func (e *CryptoError) Unwrap() error { return e.Cause }

// StampingError wraps a PDF rendering or I/O failure. No partial output is
// ever persisted when one is returned.
type StampingError struct {
	Op    string
	Cause error
}

func (e *StampingError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Cause.Error()
	}
	return e.Op
}

func (e *StampingError) Unwrap() error { return e.Cause }

// Status maps an error to the HTTP status code the API responds with.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &ve),
		errors.Is(err, ErrNoActiveSubscription),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrSubscriptionExpired),
		errors.Is(err, ErrInvitationExpired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for err. Internal failures are
// collapsed to a generic message; the full cause belongs in the log.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		var ce *CryptoError
		var se *StampingError
		switch {
		case errors.As(err, &ce):
			return "cryptographic operation failed"
		case errors.As(err, &se):
			return "document stamping failed"
		default:
			return "internal error"
		}
	}
	return err.Error()
}
