package apperror

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("create region: %w", Invalid("code", "the length must be between 1 and 5"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "the length must be between 1 and 5", verr.Fields["code"])
	assert.Equal(t, "validation failed: code: the length must be between 1 and 5", verr.Error())
}

func TestFromValidation(t *testing.T) {
	assert.NoError(t, FromValidation(nil))

	src := validation.Errors{
		"name": errors.New("cannot be blank"),
		"code": nil,
	}
	err := FromValidation(src)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"name": "cannot be blank"}, verr.Fields)
}

func TestFromValidation_PlainError(t *testing.T) {
	err := FromValidation(errors.New("must be positive"))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be positive", verr.Fields["non_field_errors"])
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable(cause)

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")

	// already classified errors are not wrapped twice
	assert.Same(t, err, Unavailable(err))
	assert.Nil(t, Unavailable(nil))
}
