package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/domain"
	"github.com/devplan/devplan/internal/store"
)

func TestRunSessions(t *testing.T) {
	t.Run("empty store text output", func(t *testing.T) {
		t.Setenv("DEVPLAN_HOME", t.TempDir())

		buf := new(bytes.Buffer)
		err := runSessions(context.Background(), &GlobalFlags{Output: OutputText}, buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No sessions")
	})

	t.Run("empty store json output", func(t *testing.T) {
		t.Setenv("DEVPLAN_HOME", t.TempDir())

		buf := new(bytes.Buffer)
		err := runSessions(context.Background(), &GlobalFlags{Output: OutputJSON}, buf)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("lists sessions most recent first", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("DEVPLAN_HOME", home)

		sessions, err := store.NewFileSessionStore(home)
		require.NoError(t, err)

		older := &domain.Session{
			ID:        "11111111-1111-1111-1111-111111111111",
			State:     domain.StatePlanReady,
			TaskText:  "Add CSV export",
			UpdatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		}
		newer := &domain.Session{
			ID:        "22222222-2222-2222-2222-222222222222",
			State:     domain.StateAwaitingAnswers,
			TaskText:  "Rework auth",
			UpdatedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, sessions.Create(context.Background(), older))
		require.NoError(t, sessions.Create(context.Background(), newer))

		buf := new(bytes.Buffer)
		err = runSessions(context.Background(), &GlobalFlags{Output: OutputJSON}, buf)
		require.NoError(t, err)

		var listed []*domain.Session
		require.NoError(t, json.Unmarshal(buf.Bytes(), &listed))
		require.Len(t, listed, 2)
		assert.Equal(t, newer.ID, listed[0].ID)
		assert.Equal(t, older.ID, listed[1].ID)
	})
}
