package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	appErr := NewDatabaseError("apply loss mutation", cause)

	assert.Equal(t, ErrCodeDatabaseError, appErr.Code)
	assert.True(t, stderrors.Is(appErr, cause))
	assert.True(t, appErr.IsInternal())
	assert.Contains(t, appErr.Error(), "disk full")
	assert.Equal(t, "apply loss mutation", appErr.Details["operation"])
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewRaffleNotFoundError(7))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeRaffleNotFound, appErr.Code)
	assert.True(t, appErr.IsNotFound())
	assert.EqualValues(t, 7, appErr.Details["raffle_id"])

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	assert.True(t, NewInvalidDrawLevelError("extreme").IsValidation())
	assert.True(t, NewValidationError("name", "empty").IsValidation())
	assert.False(t, New(ErrCodeDegenerateDistribution, "empty multiset").IsInternal())
	assert.True(t, New(ErrCodeEntropyUnavailable, "no entropy").IsInternal())
}

func TestWithContext(t *testing.T) {
	appErr := New(ErrCodeConflict, "duplicate").
		WithContext("path", "/api/v1/raffles").
		WithRequestID("req-1")

	assert.Equal(t, "/api/v1/raffles", appErr.Context["path"])
	assert.Equal(t, "req-1", appErr.RequestID)
	assert.NotEmpty(t, appErr.Stack)
}

func TestWrapfFormatsMessage(t *testing.T) {
	cause := stderrors.New("empty multiset")
	appErr := Wrapf(cause, ErrCodeDegenerateDistribution, "Raffle %d needs at least two ticket owners", 12)

	assert.Equal(t, ErrCodeDegenerateDistribution, appErr.Code)
	assert.Equal(t, "Raffle 12 needs at least two ticket owners", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}
