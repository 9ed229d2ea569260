package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	err := NewUserError("invalid duration", "Use forms like '15m'.")
	assert.Equal(t, "invalid duration", err.Error())
	assert.Equal(t, "Use forms like '15m'.", err.Suggestion)

	withField := NewUserErrorWithField("duration", "banana", "invalid duration", "")
	assert.Contains(t, withField.Error(), "banana")
}

func TestSystemError(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := NewSystemErrorWithOp("timer start", "failed to read today's logs", cause)

	assert.Contains(t, err.Error(), "timer start")
	assert.Equal(t, cause, err.Unwrap())

	plain := NewSystemError("failed", cause)
	assert.Equal(t, "failed", plain.Error())
}

func TestSentinelMatching(t *testing.T) {
	wrapped := fmt.Errorf("starting timer: %w", ErrNoQualifyingItems)
	assert.True(t, Is(wrapped, ErrNoQualifyingItems))
	assert.False(t, Is(wrapped, ErrNoActiveTimer))

	var ue *UserError
	assert.True(t, As(NewUserError("m", "s"), &ue))
}
