package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Status(ErrNotFound))
	assert.Equal(t, http.StatusForbidden, Status(ErrForbidden))
	assert.Equal(t, http.StatusBadRequest, Status(ErrQuotaExceeded))
	assert.Equal(t, http.StatusBadRequest, Status(ErrNoActiveSubscription))
	assert.Equal(t, http.StatusBadRequest, Status(ErrSubscriptionExpired))
	assert.Equal(t, http.StatusBadRequest, Status(ErrInvitationExpired))
	assert.Equal(t, http.StatusBadRequest, Status(Validation("bad input")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
}

func TestStatusWrappedError(t *testing.T) {
	err := fmt.Errorf("signing document: %w", ErrQuotaExceeded)
	assert.Equal(t, http.StatusBadRequest, Status(err))
}

func TestMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("pq: connection refused")))
	assert.Equal(t, "cryptographic operation failed",
		Message(&CryptoError{Op: "decrypt", Cause: errors.New("bad key")}))
	assert.Equal(t, "document stamping failed",
		Message(&StampingError{Op: "write", Cause: errors.New("disk full")}))
}

func TestMessageKeepsUserFacingErrors(t *testing.T) {
	assert.Equal(t, "signature name is required", Message(Validation("signature name is required")))
	assert.Equal(t, ErrQuotaExceeded.Error(), Message(ErrQuotaExceeded))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root")
	assert.ErrorIs(t, &CryptoError{Op: "op", Cause: cause}, cause)
	assert.ErrorIs(t, &StampingError{Op: "op", Cause: cause}, cause)
}
