package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeInvalidAttributes, "userId too long")
	assert.True(t, HasCode(err, CodeInvalidAttributes))
	assert.False(t, HasCode(err, CodeMissingContext))
	assert.False(t, HasCode(nil, CodeInvalidAttributes))
	assert.False(t, HasCode(errors.New("plain"), CodeInvalidAttributes))
}

func TestHasCode_WrappedChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeSinkFailure, "error logging event login")
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, HasCode(wrapped, CodeSinkFailure))
	require.ErrorIs(t, wrapped, cause)
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("broker unreachable")
	err := Wrap(cause, CodeSinkFailure, "error logging event login")
	assert.Equal(t, "error logging event login: broker unreachable", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeUnknownEvent, "unable to locate definition of audit event %s", "transfer")
	assert.Equal(t, "unable to locate definition of audit event transfer", err.Error())
	assert.True(t, Is(err, CodeUnknownEvent))
}
