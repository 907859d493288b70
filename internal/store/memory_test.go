package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devplanerrors "github.com/devplan/devplan/internal/errors"
)

func TestMemoryContextStore(t *testing.T) {
	t.Parallel()

	t.Run("miss returns not found", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryContextStore()
		_, err := s.Get(context.Background(), "octocat/hello-world")
		require.ErrorIs(t, err, devplanerrors.ErrContextNotFound)
	})

	t.Run("put get touch round trip", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryContextStore()
		ctx := context.Background()
		rc := newTestContext("octocat/hello-world")
		require.NoError(t, s.Put(ctx, rc))

		n, err := s.Touch(ctx, rc.Key())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := s.Get(ctx, rc.Key())
		require.NoError(t, err)
		assert.Equal(t, rc.Summary, got.Summary)
		assert.Equal(t, int64(1), got.AccessCount)
	})

	t.Run("returned context is a copy", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryContextStore()
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, newTestContext("octocat/hello-world")))

		got, err := s.Get(ctx, "octocat/hello-world")
		require.NoError(t, err)
		got.Summary = "mutated by caller"

		again, err := s.Get(ctx, "octocat/hello-world")
		require.NoError(t, err)
		assert.Equal(t, "a reporting service", again.Summary)
	})

	t.Run("concurrent writers leave a complete object", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryContextStore()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rc := newTestContext("octocat/hello-world")
				assert.NoError(t, s.Put(ctx, rc))
				_, _ = s.Touch(ctx, rc.Key()) //nolint:errcheck // Counter value irrelevant here
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, "octocat/hello-world")
		require.NoError(t, err)
		assert.Equal(t, "a reporting service", got.Summary)
		assert.Equal(t, int64(16), got.AccessCount)
	})
}
