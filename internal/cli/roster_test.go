package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/errors"
)

func TestRunRoster(t *testing.T) {
	t.Parallel()

	t.Run("renders roster from path flag", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "team.yaml")
		yaml := `members:
  - name: Alex
    role: backend developer
    skills: [go, csv]
    current_load: 10
    capacity: 40
  - name: Sam
    role: frontend developer
    current_load: 40
    capacity: 40
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

		buf := new(bytes.Buffer)
		err := runRoster(context.Background(), path, &GlobalFlags{Output: OutputText}, buf)
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "Alex")
		assert.Contains(t, output, "idle")
		assert.Contains(t, output, "overloaded")
	})

	t.Run("missing roster file", func(t *testing.T) {
		t.Parallel()

		buf := new(bytes.Buffer)
		err := runRoster(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"),
			&GlobalFlags{Output: OutputText}, buf)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrRosterNotFound)
	})
}
