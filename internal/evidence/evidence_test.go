package evidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/repohost"
	"github.com/devplan/devplan/internal/testutil"
)

// mockHost records SearchCode calls and returns canned matches per keyword.
type mockHost struct {
	matches map[string][]repohost.CodeMatch
	fail    map[string]bool
	queries []string
}

func (m *mockHost) GetTree(_ context.Context, _, _ string) ([]string, error) {
	return nil, nil
}

func (m *mockHost) GetFile(_ context.Context, _, _, _ string) ([]byte, error) {
	return nil, nil
}

func (m *mockHost) SearchCode(_ context.Context, _, _, query string) ([]repohost.CodeMatch, error) {
	m.queries = append(m.queries, query)
	if m.fail[query] {
		return nil, testutil.ErrMockHostFailed
	}
	return m.matches[query], nil
}

func (m *mockHost) ListRepos(_ context.Context) ([]repohost.RepoInfo, error) {
	return nil, nil
}

func TestSearch(t *testing.T) {
	t.Parallel()

	t.Run("collects matches per keyword", func(t *testing.T) {
		t.Parallel()

		host := &mockHost{matches: map[string][]repohost.CodeMatch{
			"export": {{File: "internal/export/csv.go", URL: "https://example.com/1"}},
			"report": {{File: "internal/report/report.go"}, {File: "web/reports.tsx"}},
		}}
		s := NewSearcher(host, nil)

		got := s.Search(context.Background(), "octocat", "hello-world", []string{"export", "report"})
		require.Len(t, got, 3)
		assert.Equal(t, "export", got[0].Keyword)
		assert.Equal(t, "internal/export/csv.go", got[0].File)
		assert.Equal(t, "report", got[1].Keyword)
	})

	t.Run("caps keywords at three", func(t *testing.T) {
		t.Parallel()

		host := &mockHost{}
		s := NewSearcher(host, nil)

		s.Search(context.Background(), "octocat", "hello-world", []string{"a", "b", "c", "d", "e"})
		assert.Equal(t, []string{"a", "b", "c"}, host.queries)
	})

	t.Run("failed keyword is skipped not fatal", func(t *testing.T) {
		t.Parallel()

		host := &mockHost{
			matches: map[string][]repohost.CodeMatch{
				"export": {{File: "internal/export/csv.go"}},
			},
			fail: map[string]bool{"broken": true},
		}
		s := NewSearcher(host, nil)

		got := s.Search(context.Background(), "octocat", "hello-world", []string{"broken", "export"})
		require.Len(t, got, 1)
		assert.Equal(t, "export", got[0].Keyword)
	})

	t.Run("no matches is an empty result", func(t *testing.T) {
		t.Parallel()

		s := NewSearcher(&mockHost{}, nil)
		got := s.Search(context.Background(), "octocat", "hello-world", []string{"export"})
		assert.Empty(t, got)
	})

	t.Run("skips empty keywords", func(t *testing.T) {
		t.Parallel()

		host := &mockHost{}
		s := NewSearcher(host, nil)
		s.Search(context.Background(), "octocat", "hello-world", []string{"", "export"})
		assert.Equal(t, []string{"export"}, host.queries)
	})

	t.Run("cancellation stops further queries", func(t *testing.T) {
		t.Parallel()

		host := &mockHost{}
		s := NewSearcher(host, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := s.Search(ctx, "octocat", "hello-world", []string{"a", "b"})
		assert.Empty(t, got)
		assert.Empty(t, host.queries)
	})
}
