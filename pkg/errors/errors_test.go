package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load statistics: %w", Clone(ErrNoActiveCycle, ""))

	assert.True(t, IsCode(err, ErrNoActiveCycle.Code))
	assert.False(t, IsCode(err, ErrNotFound.Code))
	assert.False(t, IsCode(errors.New("plain"), ErrInternal.Code))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrValidation, "bad date")
	assert.Same(t, typed, FromError(fmt.Errorf("wrapped: %w", typed)))

	cause := errors.New("connection reset")
	internal := FromError(cause)
	require.NotNil(t, internal)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, "internal server error: connection reset", internal.Error())
}

func TestCloneKeepsPredefinedIntact(t *testing.T) {
	clone := Clone(ErrValidation, "threshold out of range")

	assert.Equal(t, "threshold out of range", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, ErrValidation.Message, Clone(ErrValidation, "").Message)
	assert.Nil(t, Clone(nil, "x"))

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.NoError(t, nilErr.Unwrap())
}
