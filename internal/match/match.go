// Package match scores team members against subtasks with a deterministic
// heuristic. No generation service is involved: the same roster and the
// same subtask always produce the same ranking.
package match

import (
	"sort"
	"strings"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/domain"
)

// Scoring weights. Expertise outranks skills, a role fit outranks both,
// and idle members get a flat availability bonus.
const (
	skillWeight     = 2
	expertiseWeight = 3
	roleWeight      = 5
	idleWeight      = 2
)

// Match scores every roster member against the subtask and returns the top
// candidates, highest score first. Members scoring zero are excluded; ties
// keep roster order. An empty result means nobody on the roster fits.
func Match(subtask *domain.Subtask, roster []domain.TeamMember) []domain.MatchResult {
	text := subtaskText(subtask)
	role := strings.ToLower(subtask.Role)

	results := make([]domain.MatchResult, 0, len(roster))
	for i := range roster {
		member := &roster[i]
		score, reasons := scoreMember(member, text, role)
		if score <= 0 {
			continue
		}
		results = append(results, domain.MatchResult{
			Member:       member.Name,
			Score:        score,
			MatchReasons: reasons,
		})
	}

	// SliceStable keeps first-seen roster order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > constants.MaxMatchCandidates {
		results = results[:constants.MaxMatchCandidates]
	}
	return results
}

// Assign fills AssignedTo for every subtask in the plan with its best
// match, or the unassigned sentinel when nobody scores. Returns the match
// results per subtask title for reporting.
func Assign(plan *domain.Plan, roster []domain.TeamMember) map[string][]domain.MatchResult {
	matches := make(map[string][]domain.MatchResult, len(plan.Subtasks))
	for i := range plan.Subtasks {
		st := &plan.Subtasks[i]
		ranked := Match(st, roster)
		matches[st.Title] = ranked
		if len(ranked) > 0 {
			st.AssignedTo = ranked[0].Member
		} else {
			st.AssignedTo = constants.UnassignedMember
		}
	}
	return matches
}

func scoreMember(member *domain.TeamMember, text, role string) (int, []string) {
	var score int
	var reasons []string

	for _, skill := range member.Skills {
		token := strings.ToLower(strings.TrimSpace(skill))
		if token != "" && strings.Contains(text, token) {
			score += skillWeight
			reasons = append(reasons, "skill: "+skill)
		}
	}
	for _, tag := range member.Expertise {
		token := strings.ToLower(strings.TrimSpace(tag))
		if token != "" && strings.Contains(text, token) {
			score += expertiseWeight
			reasons = append(reasons, "expertise: "+tag)
		}
	}

	memberRole := strings.ToLower(strings.TrimSpace(member.Role))
	if role != "" && memberRole != "" &&
		(strings.Contains(memberRole, role) || strings.Contains(role, memberRole)) {
		score += roleWeight
		reasons = append(reasons, "role: "+member.Role)
	}

	// The bonus applies only to genuinely idle members, not merely
	// underloaded ones, and regardless of any other overlap.
	if member.Status() == domain.StatusIdle {
		score += idleWeight
		reasons = append(reasons, "available capacity")
	}
	return score, reasons
}

// subtaskText is the lowercased haystack skill and expertise tokens are
// matched against: title, description, role, and the touched file paths.
func subtaskText(subtask *domain.Subtask) string {
	parts := []string{subtask.Title, subtask.Description, subtask.Role}
	parts = append(parts, subtask.FilesToCreate...)
	parts = append(parts, subtask.FilesToModify...)
	return strings.ToLower(strings.Join(parts, " "))
}
