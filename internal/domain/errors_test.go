package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "No image provided", ErrNoImage.Error())

	wrapped := ErrInvalidImage.WithError(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid image format or corrupted file: unexpected EOF", wrapped.Error())
}

func TestAppError_WithErrorKeepsIdentity(t *testing.T) {
	cause := errors.New("png: invalid format")
	wrapped := ErrInvalidImage.WithError(cause)

	assert.ErrorIs(t, wrapped, ErrInvalidImage)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrNoImage)
	assert.Equal(t, 422, wrapped.StatusCode)

	outer := fmt.Errorf("detect upload: %w", wrapped)
	var appErr *AppError
	assert.True(t, errors.As(outer, &appErr))
	assert.Equal(t, "INVALID_IMAGE", appErr.Code)
}
