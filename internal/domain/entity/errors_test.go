package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_CarriesCurrentStatus(t *testing.T) {
	err := NewInvalidTransition(StatusAccepted, "reject")

	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidTransition, de.Code)
	assert.Equal(t, StatusAccepted, de.Status)
	assert.Contains(t, err.Error(), "current status: accepted")
}

func TestAsDomainError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFound("doc-1"))

	de, ok := AsDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, de.Code)
}

func TestAsDomainError_Plain(t *testing.T) {
	_, ok := AsDomainError(fmt.Errorf("plain failure"))
	assert.False(t, ok)
}
