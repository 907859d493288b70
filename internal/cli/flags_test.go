package cli

import (
	stderrors "errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		valid  bool
	}{
		{OutputText, true},
		{OutputJSON, true},
		{"xml", false},
		{"", false},
		{"JSON", false},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.valid, IsValidOutputFormat(tc.format))
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil error", nil, ExitSuccess},
		{"invalid repo ref", errors.Wrap(errors.ErrInvalidRepoRef, "parsing"), ExitInvalidInput},
		{"invalid output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"invalid argument", errors.ErrInvalidArgument, ExitInvalidInput},
		{"empty value", errors.Wrap(errors.ErrEmptyValue, "task text"), ExitInvalidInput},
		{"session not found", errors.ErrSessionNotFound, ExitError},
		{"generic error", stderrors.New("boom"), ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.code, ExitCodeForError(tc.err))
		})
	}
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	t.Run("registers flags with defaults", func(t *testing.T) {
		t.Parallel()

		flags := &GlobalFlags{}
		cmd := &cobra.Command{Use: "test"}
		AddGlobalFlags(cmd, flags)

		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, OutputText, flags.Output)
		assert.False(t, flags.Verbose)
		assert.False(t, flags.Quiet)
	})

	t.Run("verbose and quiet are mutually exclusive", func(t *testing.T) {
		t.Parallel()

		flags := &GlobalFlags{}
		cmd := &cobra.Command{
			Use:  "test",
			RunE: func(_ *cobra.Command, _ []string) error { return nil },
		}
		AddGlobalFlags(cmd, flags)
		cmd.SetArgs([]string{"--verbose", "--quiet"})
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true

		err := cmd.Execute()
		require.Error(t, err)
	})
}
