package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Predicates(t *testing.T) {
	cause := errors.New("connection reset")
	fetch := NewFetchError("progress/abc", cause)
	wrapped := fmt.Errorf("refresh: %w", fetch)

	assert.True(t, IsFetchError(wrapped))
	assert.False(t, IsValidationError(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	assert.True(t, IsValidationError(NewValidationError(KindPin, "bad")))
	assert.True(t, IsMissingDependency(NewMissingDependencyError(KindTrophy, "g1/a1")))
	assert.False(t, IsFetchError(cause))
}

func TestError_Message(t *testing.T) {
	err := NewMissingDependencyError(KindTrophy, "g1/a1")
	assert.Equal(t, "MISSING_DEPENDENCY: referenced record not found (kind=trophy, key=g1/a1)", err.Error())

	fetch := NewFetchError("k", errors.New("boom"))
	assert.Equal(t, "FETCH_FAILED: fetch failed (key=k): boom", fetch.Error())
}
