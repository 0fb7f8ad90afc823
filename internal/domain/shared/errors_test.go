package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewDomainError("JOB_IN_PROGRESS", "job 42 is printing"))

	assert.ErrorIs(t, wrapped, ErrJobInProgress, "matches by code, not message")
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, errors.New("JOB_IN_PROGRESS"), ErrJobInProgress)
}

func TestAsDomainError(t *testing.T) {
	de, ok := AsDomainError(fmt.Errorf("lookup: %w", ErrNotFound))
	assert.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "Resource not found", de.Error())

	_, ok = AsDomainError(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()
	assert.NotEqual(t, e.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}
