package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/domain"
)

func csvSubtask() *domain.Subtask {
	return &domain.Subtask{
		Title:       "Implement CSV writer",
		Description: "Stream report rows as RFC 4180 CSV from the Go backend",
		Role:        "backend developer",
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	t.Run("scores skills expertise role and availability", func(t *testing.T) {
		t.Parallel()

		roster := []domain.TeamMember{
			{
				Name:        "Alex",
				Role:        "backend developer",
				Skills:      []string{"go", "csv"},
				Expertise:   []string{"report"},
				CurrentLoad: 10,
				Capacity:    40,
			},
		}

		got := Match(csvSubtask(), roster)
		require.Len(t, got, 1)
		// 2 (go) + 2 (csv) + 3 (report) + 5 (role) + 2 (idle) = 14.
		assert.Equal(t, 14, got[0].Score)
		assert.Contains(t, got[0].MatchReasons, "skill: go")
		assert.Contains(t, got[0].MatchReasons, "expertise: report")
		assert.Contains(t, got[0].MatchReasons, "role: backend developer")
		assert.Contains(t, got[0].MatchReasons, "available capacity")
	})

	t.Run("zero scores are excluded", func(t *testing.T) {
		t.Parallel()

		roster := []domain.TeamMember{
			{Name: "Dana", Role: "designer", Skills: []string{"figma"}, CurrentLoad: 40, Capacity: 40},
		}
		assert.Empty(t, Match(csvSubtask(), roster))
	})

	t.Run("idle capacity alone is a fit", func(t *testing.T) {
		t.Parallel()

		// No skill, expertise, or role overlap, but fully idle.
		roster := []domain.TeamMember{
			{Name: "Dana", Role: "designer", Capacity: 40},
		}
		got := Match(csvSubtask(), roster)
		require.Len(t, got, 1)
		assert.Equal(t, idleWeight, got[0].Score)
		assert.Equal(t, []string{"available capacity"}, got[0].MatchReasons)
	})

	t.Run("busy member gets no availability bonus", func(t *testing.T) {
		t.Parallel()

		// 5 free hours of 40 is busy, not idle.
		roster := []domain.TeamMember{
			{Name: "Alex", Role: "backend developer", CurrentLoad: 35, Capacity: 40},
		}
		got := Match(csvSubtask(), roster)
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0].Score)
		assert.NotContains(t, got[0].MatchReasons, "available capacity")
	})

	t.Run("overloaded member gets no availability bonus", func(t *testing.T) {
		t.Parallel()

		roster := []domain.TeamMember{
			{Name: "Alex", Role: "backend developer", CurrentLoad: 45, Capacity: 40},
		}
		got := Match(csvSubtask(), roster)
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0].Score)
		assert.NotContains(t, got[0].MatchReasons, "available capacity")
	})

	t.Run("skill tokens match against the subtask role text", func(t *testing.T) {
		t.Parallel()

		st := &domain.Subtask{
			Title:       "Verify export output",
			Description: "Check the downloaded file against the fixture",
			Role:        "qa engineer",
		}
		roster := []domain.TeamMember{
			{Name: "Sam", Role: "tester", Skills: []string{"qa"}, CurrentLoad: 35, Capacity: 40},
		}
		got := Match(st, roster)
		require.Len(t, got, 1)
		assert.Equal(t, skillWeight, got[0].Score)
		assert.Contains(t, got[0].MatchReasons, "skill: qa")
	})

	t.Run("role substring matches either direction", func(t *testing.T) {
		t.Parallel()

		st := csvSubtask()
		st.Role = "developer"
		roster := []domain.TeamMember{
			{Name: "Alex", Role: "senior backend developer", CurrentLoad: 40, Capacity: 40},
		}
		got := Match(st, roster)
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0].Score)
	})

	t.Run("returns at most three ranked candidates", func(t *testing.T) {
		t.Parallel()

		roster := []domain.TeamMember{
			{Name: "A", Role: "backend developer", Skills: []string{"go"}, Capacity: 40},
			{Name: "B", Role: "backend developer", Capacity: 40},
			{Name: "C", Role: "backend developer", Skills: []string{"go", "csv"}, Capacity: 40},
			{Name: "D", Role: "backend developer", Capacity: 40},
		}
		got := Match(csvSubtask(), roster)
		require.Len(t, got, constants.MaxMatchCandidates)
		assert.Equal(t, "C", got[0].Member)
		assert.Equal(t, "A", got[1].Member)
	})

	t.Run("ties keep roster order", func(t *testing.T) {
		t.Parallel()

		roster := []domain.TeamMember{
			{Name: "First", Role: "backend developer", Capacity: 40},
			{Name: "Second", Role: "backend developer", Capacity: 40},
		}
		got := Match(csvSubtask(), roster)
		require.Len(t, got, 2)
		assert.Equal(t, "First", got[0].Member)
		assert.Equal(t, "Second", got[1].Member)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		t.Parallel()

		roster := []domain.TeamMember{
			{Name: "A", Role: "backend developer", Skills: []string{"go"}, Capacity: 40},
			{Name: "B", Role: "backend developer", Skills: []string{"csv"}, Capacity: 40},
		}
		first := Match(csvSubtask(), roster)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Match(csvSubtask(), roster))
		}
	})
}

func TestAssign(t *testing.T) {
	t.Parallel()

	t.Run("fills best match and unassigned sentinel", func(t *testing.T) {
		t.Parallel()

		plan := &domain.Plan{
			MainTask: "Add CSV export",
			Subtasks: []domain.Subtask{
				*csvSubtask(),
				{Title: "Design export button", Description: "Figma mockup", Role: "designer"},
				{Title: "Write marketing copy", Description: "launch announcement", Role: "copywriter"},
			},
		}
		// Both busy, so assignments come from overlap, not idle capacity.
		roster := []domain.TeamMember{
			{Name: "Alex", Role: "backend developer", Skills: []string{"go"}, CurrentLoad: 25, Capacity: 40},
			{Name: "Dana", Role: "designer", Skills: []string{"figma"}, CurrentLoad: 25, Capacity: 40},
		}

		matches := Assign(plan, roster)
		assert.Equal(t, "Alex", plan.Subtasks[0].AssignedTo)
		assert.Equal(t, "Dana", plan.Subtasks[1].AssignedTo)
		assert.Equal(t, constants.UnassignedMember, plan.Subtasks[2].AssignedTo)
		assert.Len(t, matches["Implement CSV writer"], 1)
		assert.Empty(t, matches["Write marketing copy"])
	})

	t.Run("empty roster leaves everything unassigned", func(t *testing.T) {
		t.Parallel()

		plan := &domain.Plan{Subtasks: []domain.Subtask{*csvSubtask()}}
		Assign(plan, nil)
		assert.Equal(t, constants.UnassignedMember, plan.Subtasks[0].AssignedTo)
	})
}
