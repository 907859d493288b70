package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/errors"
)

func TestParseAnswers(t *testing.T) {
	t.Parallel()

	t.Run("parses question=answer pairs", func(t *testing.T) {
		t.Parallel()

		answers, err := parseAnswers([]string{
			"Which format?=RFC 4180 CSV",
			"Which page? = sales ",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"Which format?": "RFC 4180 CSV",
			"Which page?":   "sales",
		}, answers)
	})

	t.Run("no flags yields nil map", func(t *testing.T) {
		t.Parallel()

		answers, err := parseAnswers(nil)
		require.NoError(t, err)
		assert.Nil(t, answers)
	})

	t.Run("rejects malformed pairs", func(t *testing.T) {
		t.Parallel()

		tests := []string{
			"no separator",
			"=answer without question",
			"question without answer=",
			"   =   ",
		}
		for _, raw := range tests {
			_, err := parseAnswers([]string{raw})
			require.Error(t, err, raw)
			assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		}
	})

	t.Run("answer may contain equals signs", func(t *testing.T) {
		t.Parallel()

		answers, err := parseAnswers([]string{"Filter?=status=active"})
		require.NoError(t, err)
		assert.Equal(t, "status=active", answers["Filter?"])
	})
}
