package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/devplan/devplan/internal/domain"
	"github.com/devplan/devplan/internal/repohost"
)

// styles holds lipgloss styles shared by the text renderers.
type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	dim      lipgloss.Style
	question lipgloss.Style
	warn     lipgloss.Style
	ok       lipgloss.Style
}

func newStyles() *styles {
	return &styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		question: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD700"}),
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// renderSession prints the session id, classification, and any open
// questions.
func renderSession(w io.Writer, sess *domain.Session) {
	st := newStyles()

	_, _ = fmt.Fprintf(w, "%s %s\n", st.header.Render("Session:"), sess.ID)
	_, _ = fmt.Fprintf(w, "%s %s\n", st.header.Render("State:"), string(sess.State))

	if sess.Classification != nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", st.header.Render("Task type:"), string(sess.Classification.TaskType))
		if sess.Classification.Reasoning != "" {
			_, _ = fmt.Fprintln(w, st.dim.Render(sess.Classification.Reasoning))
		}
	}

	if len(sess.Evidence) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", st.header.Render("Evidence found:"))
		for _, ev := range sess.Evidence {
			_, _ = fmt.Fprintf(w, "  %s %s\n", ev.File, st.dim.Render("("+ev.Keyword+")"))
		}
	}

	if sess.State == domain.StateAwaitingAnswers && sess.Classification != nil {
		renderQuestions(w, st, sess)
	}
}

// renderQuestions prints the open clarification questions with the answer
// syntax the plan command expects.
func renderQuestions(w io.Writer, st *styles, sess *domain.Session) {
	_, _ = fmt.Fprintf(w, "\n%s\n", st.warn.Render("This task needs clarification before planning:"))
	for i, q := range sess.Classification.Questions {
		_, _ = fmt.Fprintf(w, "\n%s %s\n", st.question.Render(fmt.Sprintf("%d.", i+1)), q.Question)
		if q.Explanation != "" {
			_, _ = fmt.Fprintf(w, "   %s\n", st.dim.Render(q.Explanation))
		}
		if len(q.Options) > 0 {
			_, _ = fmt.Fprintf(w, "   %s %s\n", st.dim.Render("options:"), strings.Join(q.Options, ", "))
		}
	}
	_, _ = fmt.Fprintf(w, "\nAnswer with: devplan plan --session %s --answer \"<question>=<answer>\"\n", sess.ID)
}

// renderPlan prints the generated plan as a subtask table followed by the
// per-subtask candidate matches.
func renderPlan(w io.Writer, p *domain.Plan, matches map[string][]domain.MatchResult) {
	st := newStyles()

	_, _ = fmt.Fprintln(w, st.title.Render("Execution plan"))
	_, _ = fmt.Fprintf(w, "%s %s\n", st.header.Render("Task:"), p.MainTask)
	if p.Goal != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", st.header.Render("Goal:"), p.Goal)
	}
	_, _ = fmt.Fprintf(w, "%s %s", st.header.Render("Type:"), string(p.TaskType))
	if p.Complexity != "" {
		_, _ = fmt.Fprintf(w, "   %s %s", st.header.Render("Complexity:"), p.Complexity)
	}
	_, _ = fmt.Fprintln(w)

	const (
		titleWidth    = 28
		assigneeWidth = 14
		deadlineWidth = 10
		hoursWidth    = 6
	)

	header := fmt.Sprintf("%-*s %-*s %-*s %*s  %s",
		titleWidth, "SUBTASK",
		assigneeWidth, "ASSIGNEE",
		deadlineWidth, "DEADLINE",
		hoursWidth, "HOURS",
		"DEPENDS ON",
	)
	_, _ = fmt.Fprintf(w, "\n%s\n", st.header.Render(header))

	for i := range p.Subtasks {
		sub := &p.Subtasks[i]
		row := fmt.Sprintf("%-*s %-*s %-*s %*.1f  %s",
			titleWidth, truncate(sub.Title, titleWidth),
			assigneeWidth, truncate(sub.AssignedTo, assigneeWidth),
			deadlineWidth, sub.Deadline,
			hoursWidth, sub.EstimatedHours,
			strings.Join(sub.Dependencies, ", "),
		)
		_, _ = fmt.Fprintln(w, row)
	}

	renderMatches(w, st, p, matches)
}

// renderMatches prints candidate scores for each subtask that had any.
func renderMatches(w io.Writer, st *styles, p *domain.Plan, matches map[string][]domain.MatchResult) {
	printed := false
	for i := range p.Subtasks {
		sub := &p.Subtasks[i]
		candidates := matches[sub.Title]
		if len(candidates) == 0 {
			continue
		}
		if !printed {
			_, _ = fmt.Fprintf(w, "\n%s\n", st.header.Render("Candidates:"))
			printed = true
		}
		parts := make([]string, 0, len(candidates))
		for _, c := range candidates {
			parts = append(parts, fmt.Sprintf("%s (%d)", c.Member, c.Score))
		}
		_, _ = fmt.Fprintf(w, "  %s: %s\n", sub.Title, strings.Join(parts, ", "))
	}
}

// renderSessionList prints a one-line-per-session table.
func renderSessionList(w io.Writer, sessions []*domain.Session) {
	st := newStyles()

	const (
		idWidth    = 38
		stateWidth = 18
		taskWidth  = 40
	)

	header := fmt.Sprintf("%-*s %-*s %s",
		idWidth, "SESSION",
		stateWidth, "STATE",
		"TASK",
	)
	_, _ = fmt.Fprintln(w, st.header.Render(header))

	for _, sess := range sessions {
		state := string(sess.State)
		if sess.State == domain.StateAwaitingAnswers {
			state = st.warn.Render(state)
		}
		row := fmt.Sprintf("%-*s %-*s %s",
			idWidth, sess.ID,
			stateWidth+colorOffset(state, string(sess.State)), state,
			truncate(sess.TaskText, taskWidth),
		)
		_, _ = fmt.Fprintln(w, row)
	}
}

// renderRoster prints the roster with derived availability.
func renderRoster(w io.Writer, members []domain.TeamMember) {
	st := newStyles()

	const (
		nameWidth   = 16
		roleWidth   = 22
		statusWidth = 12
		loadWidth   = 12
	)

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		nameWidth, "NAME",
		roleWidth, "ROLE",
		statusWidth, "STATUS",
		loadWidth, "LOAD",
		"SKILLS",
	)
	_, _ = fmt.Fprintln(w, st.header.Render(header))

	for i := range members {
		m := &members[i]
		status := string(m.Status())
		switch m.Status() {
		case domain.StatusIdle:
			status = st.ok.Render(status)
		case domain.StatusOverloaded:
			status = st.warn.Render(status)
		case domain.StatusBusy:
		}
		row := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
			nameWidth, truncate(m.Name, nameWidth),
			roleWidth, truncate(m.Role, roleWidth),
			statusWidth+colorOffset(status, string(m.Status())), status,
			loadWidth, fmt.Sprintf("%.0f/%.0fh", m.CurrentLoad, m.Capacity),
			strings.Join(m.Skills, ", "),
		)
		_, _ = fmt.Fprintln(w, row)
	}
}

// renderRepoList prints the repositories visible to the configured token.
func renderRepoList(w io.Writer, repos []repohost.RepoInfo) {
	st := newStyles()

	for _, r := range repos {
		visibility := ""
		if r.Private {
			visibility = " " + st.dim.Render("(private)")
		}
		_, _ = fmt.Fprintf(w, "%s%s\n", r.FullName, visibility)
		if r.Description != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", st.dim.Render(r.Description))
		}
	}
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// colorOffset compensates fixed-width columns for the invisible ANSI
// escape bytes a styled value carries.
func colorOffset(styled, plain string) int {
	return len(styled) - len(plain)
}
