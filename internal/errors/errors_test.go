package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWrap verifies error wrapping preserves the error chain.
func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("wraps error with context", func(t *testing.T) {
		t.Parallel()

		err := Wrap(ErrUnparsableResponse, "classification stage")
		require.Error(t, err)
		require.ErrorIs(t, err, ErrUnparsableResponse)
		assert.Equal(t, "classification stage: unparsable response", err.Error())
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Wrap(nil, "no-op"))
	})
}

// TestWrapf verifies formatted error wrapping.
func TestWrapf(t *testing.T) {
	t.Parallel()

	t.Run("wraps error with formatted context", func(t *testing.T) {
		t.Parallel()

		err := Wrapf(ErrSessionNotFound, "loading session %s", "abc-123")
		require.Error(t, err)
		require.ErrorIs(t, err, ErrSessionNotFound)
		assert.Contains(t, err.Error(), "loading session abc-123")
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Wrapf(nil, "session %s", "abc-123"))
	})

	t.Run("double wrap keeps sentinel reachable", func(t *testing.T) {
		t.Parallel()

		inner := Wrap(ErrValidationFailed, "plan has dangling dependency")
		outer := Wrapf(inner, "generating plan for session %s", "abc-123")
		require.ErrorIs(t, outer, ErrValidationFailed)
	})
}

// TestUserMessage verifies the sentinel to user-facing message mapping.
func TestUserMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns mapped message for sentinel", func(t *testing.T) {
		t.Parallel()

		msg := UserMessage(ErrUpstreamUnavailable)
		assert.Equal(t, "The generation service or repository host could not be reached.", msg)
	})

	t.Run("resolves wrapped sentinel", func(t *testing.T) {
		t.Parallel()

		err := Wrap(ErrHostRateLimited, "fetching tree")
		msg := UserMessage(err)
		assert.Equal(t, "Repository host API rate limit exceeded.", msg)
	})

	t.Run("falls back to error text for unknown error", func(t *testing.T) {
		t.Parallel()

		unknown := stderrors.New("something odd")
		assert.Equal(t, "something odd", UserMessage(unknown))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, UserMessage(nil))
	})
}

// TestActionable verifies that actionable errors carry a suggested action.
func TestActionable(t *testing.T) {
	t.Parallel()

	t.Run("returns message and action", func(t *testing.T) {
		t.Parallel()

		msg, action := Actionable(ErrSessionNotFound)
		assert.Equal(t, "The specified session was not found.", msg)
		assert.Contains(t, action, "devplan analyze")
	})

	t.Run("every registered sentinel has a message", func(t *testing.T) {
		t.Parallel()

		for _, entry := range errorInfoEntries {
			msg, _ := Actionable(entry.err)
			assert.NotEmpty(t, msg, "sentinel %v has empty message", entry.err)
		}
	})

	t.Run("returns empty for nil", func(t *testing.T) {
		t.Parallel()

		msg, action := Actionable(nil)
		assert.Empty(t, msg)
		assert.Empty(t, action)
	})
}
