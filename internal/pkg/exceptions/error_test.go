package exceptions

import (
	"ambica-diagnostic-service/internal/pkg/constvars"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNewCustomError(t *testing.T) {
	t.Run("Plain Error Gets Code From Status", func(t *testing.T) {
		err := BuildNewCustomError(errors.New("boom"), constvars.StatusNotFound, "missing", "dev missing")

		assert.Equal(t, constvars.StatusNotFound, err.StatusCode)
		assert.Equal(t, constvars.ErrCodeNotFound, err.ErrorCode)
		assert.Equal(t, "dev missing: boom", err.DevMessage)
		assert.Len(t, err.Locations, 1)
		assert.False(t, err.Retryable)
	})

	t.Run("Wrapping Keeps Inner Code And Retryability", func(t *testing.T) {
		inner := ErrMongoDBUpdateDocument(errors.New("connection reset"))
		outer := BuildNewCustomError(inner, constvars.StatusServiceUnavailable, "outer", "outer dev")

		assert.Equal(t, constvars.ErrCodeTransientStoreError, outer.ErrorCode)
		assert.True(t, outer.Retryable)
		assert.Len(t, outer.Locations, 2)
		assert.True(t, errors.Is(outer, inner))
	})

	t.Run("Nil Error", func(t *testing.T) {
		err := BuildNewCustomError(nil, constvars.StatusUnauthorized, "client", "dev")
		assert.Equal(t, "dev", err.DevMessage)
		assert.Nil(t, err.Unwrap())
	})
}

func TestHasCode(t *testing.T) {
	t.Run("Direct", func(t *testing.T) {
		err := ErrCapacityExhausted(nil, "2026-10-20|06:00")
		assert.True(t, HasCode(err, constvars.ErrCodeCapacityExhausted))
		assert.False(t, HasCode(err, constvars.ErrCodeNotFound))
	})

	t.Run("Through fmt Wrapping", func(t *testing.T) {
		err := fmt.Errorf("booking: %w", ErrPaymentVerificationFailed(nil, constvars.SignatureRejectMismatch))
		assert.True(t, HasCode(err, constvars.ErrCodeVerificationFailed))
	})

	t.Run("Nested Custom Errors", func(t *testing.T) {
		inner := ErrAppointmentInvalidTransition(nil, constvars.AppointmentStatusPending, constvars.AppointmentStatusCompleted)
		outer := WrapWithoutError(constvars.StatusConflict, "x", "y")
		outer.err = inner
		assert.True(t, HasCode(outer, constvars.ErrCodeInvalidTransition))
	})

	t.Run("Plain Error", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), constvars.ErrCodeNotFound))
		assert.False(t, HasCode(nil, constvars.ErrCodeNotFound))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrPaymentGatewayTimeout(nil)))
	assert.True(t, IsRetryable(ErrMongoDBFindDocument(errors.New("timeout"))))
	assert.False(t, IsRetryable(ErrPaymentVerificationFailed(nil, constvars.SignatureRejectMalformed)))
	assert.False(t, IsRetryable(errors.New("plain")))
}
