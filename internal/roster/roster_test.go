package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads a valid roster", func(t *testing.T) {
		t.Parallel()

		path := writeRoster(t, `
members:
  - name: Alex
    role: backend developer
    skills: [go, postgres]
    expertise: [reporting]
    current_load: 24
    capacity: 40
  - name: Dana
    role: designer
    skills: [figma]
    current_load: 38
    capacity: 40
`)

		members, err := Load(path)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "Alex", members[0].Name)
		assert.Equal(t, []string{"go", "postgres"}, members[0].Skills)
		assert.Equal(t, domain.StatusBusy, members[0].Status())
		assert.Equal(t, domain.StatusBusy, members[1].Status())
	})

	t.Run("status is derived not stored", func(t *testing.T) {
		t.Parallel()

		path := writeRoster(t, `
members:
  - name: Alex
    role: backend developer
    current_load: 5
    capacity: 40
`)
		members, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusIdle, members[0].Status())
		assert.InDelta(t, 35.0, members[0].IdleHours(), 0.001)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, devplanerrors.ErrRosterNotFound)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := Load("")
		require.ErrorIs(t, err, devplanerrors.ErrEmptyValue)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := Load(writeRoster(t, "members: [unclosed"))
		require.ErrorIs(t, err, devplanerrors.ErrRosterInvalid)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name    string
			content string
		}{
			{"no members", "members: []"},
			{"missing name", "members:\n  - role: dev\n    capacity: 40"},
			{"missing role", "members:\n  - name: Alex\n    capacity: 40"},
			{"duplicate name", "members:\n  - name: Alex\n    role: dev\n  - name: Alex\n    role: dev"},
			{"negative capacity", "members:\n  - name: Alex\n    role: dev\n    capacity: -1"},
			{"negative load", "members:\n  - name: Alex\n    role: dev\n    current_load: -1"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				_, err := Load(writeRoster(t, tc.content))
				require.ErrorIs(t, err, devplanerrors.ErrRosterInvalid)
			})
		}
	})
}
