package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devplan/devplan/internal/domain"
)

// buildPlanPrompt assembles the plan generation prompt. The roster is
// reduced to names, roles, and skills; load figures and contact details
// never leave the process.
func buildPlanPrompt(sess *domain.Session, repoCtx *domain.RepositoryContext, roster []domain.TeamMember, anchor time.Time) string {
	var b strings.Builder
	b.WriteString("Decompose the following work item into an execution plan.\n\n")
	fmt.Fprintf(&b, "Work item: %s\n", sess.TaskText)
	fmt.Fprintf(&b, "Task type: %s\n", sess.Classification.TaskType)
	fmt.Fprintf(&b, "Today is %s. All deadlines must be on or after this date.\n\n", anchor.Format(domain.DeadlineLayout))

	if repoCtx != nil {
		fmt.Fprintf(&b, "Repository %s: %s\n", repoCtx.Repo.String(), repoCtx.Summary)
		if repoCtx.TechStack.PrimaryLanguage != "" {
			fmt.Fprintf(&b, "Primary language: %s\n", repoCtx.TechStack.PrimaryLanguage)
		}
		if len(repoCtx.Modules) > 0 {
			b.WriteString("Modules:\n")
			for _, m := range repoCtx.Modules {
				fmt.Fprintf(&b, "  %s: %s\n", m.Name, m.Description)
			}
		}
		b.WriteByte('\n')
	}

	if len(sess.Evidence) > 0 {
		b.WriteString("Existing code related to the task:\n")
		for _, ev := range sess.Evidence {
			fmt.Fprintf(&b, "  %s\n", ev.File)
		}
		b.WriteByte('\n')
	}

	if len(sess.Answers) > 0 {
		b.WriteString("Clarification answers:\n")
		// Sorted keys keep the prompt byte-identical across runs.
		questions := make([]string, 0, len(sess.Answers))
		for q := range sess.Answers {
			questions = append(questions, q)
		}
		sort.Strings(questions)
		for _, q := range questions {
			fmt.Fprintf(&b, "  Q: %s\n  A: %s\n", q, sess.Answers[q])
		}
		b.WriteByte('\n')
	}

	if len(roster) > 0 {
		b.WriteString("Team roles available (use these in the subtask \"role\" field):\n")
		for i := range roster {
			m := &roster[i]
			fmt.Fprintf(&b, "  %s, %s", m.Name, m.Role)
			if len(m.Skills) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(m.Skills, ", "))
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString("Respond with a single JSON object:\n")
	b.WriteString(`  "goal": one-line outcome statement` + "\n")
	b.WriteString(`  "complexity": "low" | "medium" | "high"` + "\n")
	b.WriteString(`  "subtasks": ordered list of objects with "title" (unique), "description", "role",` + "\n")
	b.WriteString(`      "deadline" (YYYY-MM-DD, on or after today), "estimated_hours" (> 0), "timeline",` + "\n")
	b.WriteString(`      "dependencies" (titles of earlier subtasks), "files_to_create", "files_to_modify"` + "\n\n")
	b.WriteString("Respond with JSON only, no surrounding prose.\n")
	return b.String()
}
