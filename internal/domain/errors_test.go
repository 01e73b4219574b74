package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("bad input")))
	assert.True(t, IsConflict(NewConflictError("room taken")))
	assert.True(t, IsNotFound(NewNotFoundError("room", "abc")))
	assert.True(t, IsDataIntegrity(NewDataIntegrityError("orphan booking")))

	err := fmt.Errorf("plain failure")
	assert.False(t, IsValidation(err))
	assert.False(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsDataIntegrity(err))
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("saving booking: %w", NewConflictError("overlap"))
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("room", "42")
	assert.Equal(t, "room not found: 42", err.Error())
}
