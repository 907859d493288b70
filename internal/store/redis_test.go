package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

func newTestContext(repo string) *domain.RepositoryContext {
	ref, _ := domain.ParseRepoRef(repo) //nolint:errcheck // Test fixture
	return &domain.RepositoryContext{
		Repo:    ref,
		Summary: "a reporting service",
		TechStack: domain.TechStack{
			PrimaryLanguage: "Go",
			Frameworks:      []string{"chi"},
		},
		Metrics:   domain.RepoMetrics{FileCount: 42},
		CreatedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}
}

func newRedisStore(t *testing.T) *RedisContextStore {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisContextStore(RedisConfig{Addr: mr.Addr(), Prefix: "devplan:"}, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisContextStore(t *testing.T) {
	t.Parallel()

	t.Run("get miss returns not found", func(t *testing.T) {
		t.Parallel()

		s := newRedisStore(t)
		_, err := s.Get(context.Background(), "octocat/hello-world")
		require.ErrorIs(t, err, devplanerrors.ErrContextNotFound)
	})

	t.Run("put then get round trips", func(t *testing.T) {
		t.Parallel()

		s := newRedisStore(t)
		rc := newTestContext("octocat/hello-world")
		require.NoError(t, s.Put(context.Background(), rc))

		got, err := s.Get(context.Background(), "octocat/hello-world")
		require.NoError(t, err)
		assert.Equal(t, rc.Summary, got.Summary)
		assert.Equal(t, "Go", got.TechStack.PrimaryLanguage)
		assert.Equal(t, 42, got.Metrics.FileCount)
		assert.Equal(t, int64(0), got.AccessCount)
	})

	t.Run("touch increments and survives overwrite", func(t *testing.T) {
		t.Parallel()

		s := newRedisStore(t)
		ctx := context.Background()
		rc := newTestContext("octocat/hello-world")
		require.NoError(t, s.Put(ctx, rc))

		n, err := s.Touch(ctx, rc.Key())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.Touch(ctx, rc.Key())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		// Recomputation overwrites the document, not the counter.
		rc2 := newTestContext("octocat/hello-world")
		rc2.Summary = "recomputed"
		require.NoError(t, s.Put(ctx, rc2))

		got, err := s.Get(ctx, rc.Key())
		require.NoError(t, err)
		assert.Equal(t, "recomputed", got.Summary)
		assert.Equal(t, int64(2), got.AccessCount)
	})

	t.Run("last writer wins cleanly", func(t *testing.T) {
		t.Parallel()

		s := newRedisStore(t)
		ctx := context.Background()

		first := newTestContext("octocat/hello-world")
		first.Summary = "first"
		second := newTestContext("octocat/hello-world")
		second.Summary = "second"

		require.NoError(t, s.Put(ctx, first))
		require.NoError(t, s.Put(ctx, second))

		got, err := s.Get(ctx, "octocat/hello-world")
		require.NoError(t, err)
		// Never an interleaved or partial object.
		assert.Equal(t, "second", got.Summary)
	})

	t.Run("rejects nil context", func(t *testing.T) {
		t.Parallel()

		s := newRedisStore(t)
		require.ErrorIs(t, s.Put(context.Background(), nil), devplanerrors.ErrEmptyValue)
	})

	t.Run("unreachable backend maps to store unavailable", func(t *testing.T) {
		t.Parallel()

		s := NewRedisContextStore(RedisConfig{Addr: "127.0.0.1:1"}, nil)
		t.Cleanup(func() { _ = s.Close() })

		_, err := s.Get(context.Background(), "octocat/hello-world")
		require.ErrorIs(t, err, devplanerrors.ErrStoreUnavailable)
	})
}
