package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/domain"
	"github.com/devplan/devplan/internal/repohost"
)

func TestOutputJSON(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	err := outputJSON(buf, map[string]string{"key": "value"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "value", decoded["key"])
}

func TestRenderSession(t *testing.T) {
	t.Parallel()

	t.Run("plan ready session", func(t *testing.T) {
		t.Parallel()

		sess := &domain.Session{
			ID:    "sess-1",
			State: domain.StatePlanReady,
			Classification: &domain.ClassificationResult{
				TaskType:  domain.TaskTypeUpdate,
				Status:    domain.ClarityClear,
				Reasoning: "the reports module already exists",
			},
			Evidence: []domain.Evidence{
				{Keyword: "report", File: "internal/reports/export.go"},
			},
		}

		buf := new(bytes.Buffer)
		renderSession(buf, sess)

		output := buf.String()
		assert.Contains(t, output, "sess-1")
		assert.Contains(t, output, "plan_ready")
		assert.Contains(t, output, "update")
		assert.Contains(t, output, "internal/reports/export.go")
		assert.NotContains(t, output, "clarification")
	})

	t.Run("awaiting answers session", func(t *testing.T) {
		t.Parallel()

		sess := &domain.Session{
			ID:    "sess-2",
			State: domain.StateAwaitingAnswers,
			Classification: &domain.ClassificationResult{
				TaskType: domain.TaskTypeNew,
				Status:   domain.ClarityAmbiguous,
				Questions: []domain.Question{
					{
						Question:    "Which report should get the export?",
						Explanation: "The repo has three report pages.",
						Options:     []string{"sales", "usage"},
					},
				},
			},
		}

		buf := new(bytes.Buffer)
		renderSession(buf, sess)

		output := buf.String()
		assert.Contains(t, output, "Which report should get the export?")
		assert.Contains(t, output, "The repo has three report pages.")
		assert.Contains(t, output, "sales, usage")
		assert.Contains(t, output, "devplan plan --session sess-2")
	})
}

func TestRenderPlan(t *testing.T) {
	t.Parallel()

	p := &domain.Plan{
		MainTask:    "Add CSV export",
		Goal:        "Users can download reports as CSV",
		TaskType:    domain.TaskTypeNew,
		Complexity:  "medium",
		GeneratedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Subtasks: []domain.Subtask{
			{
				Title:          "Build exporter",
				AssignedTo:     "Alex",
				Deadline:       "2026-09-02",
				EstimatedHours: 6,
			},
			{
				Title:          "Wire endpoint",
				AssignedTo:     "Unassigned",
				Deadline:       "2026-09-04",
				EstimatedHours: 3,
				Dependencies:   []string{"Build exporter"},
			},
		},
	}
	matches := map[string][]domain.MatchResult{
		"Build exporter": {{Member: "Alex", Score: 7}},
	}

	buf := new(bytes.Buffer)
	renderPlan(buf, p, matches)

	output := buf.String()
	assert.Contains(t, output, "Add CSV export")
	assert.Contains(t, output, "Users can download reports as CSV")
	assert.Contains(t, output, "Build exporter")
	assert.Contains(t, output, "Alex")
	assert.Contains(t, output, "Unassigned")
	assert.Contains(t, output, "2026-09-02")
	assert.Contains(t, output, "Alex (7)")
}

func TestRenderSessionList(t *testing.T) {
	t.Parallel()

	sessions := []*domain.Session{
		{ID: "sess-1", State: domain.StatePlanReady, TaskText: "Add CSV export"},
		{ID: "sess-2", State: domain.StateAwaitingAnswers, TaskText: "Rework auth"},
	}

	buf := new(bytes.Buffer)
	renderSessionList(buf, sessions)

	output := buf.String()
	assert.Contains(t, output, "SESSION")
	assert.Contains(t, output, "sess-1")
	assert.Contains(t, output, "awaiting_answers")
	assert.Contains(t, output, "Rework auth")
}

func TestRenderRoster(t *testing.T) {
	t.Parallel()

	members := []domain.TeamMember{
		{Name: "Alex", Role: "backend developer", Skills: []string{"go", "csv"}, CurrentLoad: 10, Capacity: 40},
		{Name: "Sam", Role: "frontend developer", CurrentLoad: 40, Capacity: 40},
	}

	buf := new(bytes.Buffer)
	renderRoster(buf, members)

	output := buf.String()
	assert.Contains(t, output, "Alex")
	assert.Contains(t, output, "idle")
	assert.Contains(t, output, "overloaded")
	assert.Contains(t, output, "go, csv")
	assert.Contains(t, output, "10/40h")
}

func TestRenderRepoList(t *testing.T) {
	t.Parallel()

	repos := []repohost.RepoInfo{
		{FullName: "octocat/hello-world", Description: "demo repo"},
		{FullName: "octocat/secret", Private: true},
	}

	buf := new(bytes.Buffer)
	renderRepoList(buf, repos)

	output := buf.String()
	assert.Contains(t, output, "octocat/hello-world")
	assert.Contains(t, output, "demo repo")
	assert.Contains(t, output, "private")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	long := truncate("this is far too long", 10)
	assert.Contains(t, long, "…")
}
