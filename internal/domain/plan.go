package domain

import (
	"time"

	"github.com/devplan/devplan/internal/errors"
)

// DeadlineLayout is the calendar-date format used for subtask deadlines.
const DeadlineLayout = "2006-01-02"

// Subtask is one unit of a generated plan.
type Subtask struct {
	// Title is the short subtask name. Dependencies reference these
	// titles, so titles must be unique within a plan.
	Title string `json:"title"`

	// Description explains the work in detail.
	Description string `json:"description"`

	// Role names the role expected to perform the work
	// (e.g., "backend developer").
	Role string `json:"role,omitempty"`

	// AssignedTo is the matched team member name, or the unassigned
	// sentinel when nobody scored. Filled by the matcher, not by the
	// generation service.
	AssignedTo string `json:"assigned_to,omitempty"`

	// Deadline is the calendar date (YYYY-MM-DD) the subtask is due.
	// Always on or after the plan's anchor date.
	Deadline string `json:"deadline"`

	// EstimatedHours is the effort estimate. Always > 0.
	EstimatedHours float64 `json:"estimated_hours"`

	// Timeline is a human-readable schedule hint (e.g., "days 1-2").
	Timeline string `json:"timeline,omitempty"`

	// Dependencies lists titles of sibling subtasks that must finish first.
	Dependencies []string `json:"dependencies,omitempty"`

	// FilesToCreate lists repository paths the subtask introduces.
	FilesToCreate []string `json:"files_to_create,omitempty"`

	// FilesToModify lists existing repository paths the subtask changes.
	FilesToModify []string `json:"files_to_modify,omitempty"`
}

// DeadlineTime parses the subtask deadline. Returns a zero time and an
// error when the deadline is not a valid YYYY-MM-DD date.
func (s *Subtask) DeadlineTime() (time.Time, error) {
	t, err := time.Parse(DeadlineLayout, s.Deadline)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrValidationFailed, "subtask %q has invalid deadline %q", s.Title, s.Deadline)
	}
	return t, nil
}

// Plan is a decomposed, schedulable execution plan for one task.
//
// Example JSON representation:
//
//	{
//	    "main_task": "Add CSV export to the reports page",
//	    "goal": "Users can download report data as CSV",
//	    "task_type": "new",
//	    "complexity": "medium",
//	    "subtasks": [...],
//	    "generated_at": "2026-08-31T10:05:00Z"
//	}
type Plan struct {
	// MainTask is the original task text the plan decomposes.
	MainTask string `json:"main_task"`

	// Goal is the one-line outcome statement.
	Goal string `json:"goal,omitempty"`

	// TaskType carries the classification the plan was generated under.
	TaskType TaskType `json:"task_type"`

	// Complexity is the service's coarse complexity label
	// (e.g., "low", "medium", "high").
	Complexity string `json:"complexity,omitempty"`

	// Subtasks is the ordered decomposition. Never empty in a valid plan.
	Subtasks []Subtask `json:"subtasks"`

	// GeneratedAt is when the plan was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// Validate checks plan invariants against the anchor date: at least one
// subtask, non-empty unique titles, deadlines on or after the anchor,
// positive effort estimates, and dependencies that resolve to sibling
// titles without self-reference.
func (p *Plan) Validate(anchor time.Time) error {
	if len(p.Subtasks) == 0 {
		return errors.Wrap(errors.ErrValidationFailed, "plan has zero subtasks")
	}

	anchorDay := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	titles := make(map[string]bool, len(p.Subtasks))
	for i := range p.Subtasks {
		st := &p.Subtasks[i]
		if st.Title == "" {
			return errors.Wrapf(errors.ErrValidationFailed, "subtask %d has empty title", i)
		}
		if titles[st.Title] {
			return errors.Wrapf(errors.ErrValidationFailed, "duplicate subtask title %q", st.Title)
		}
		titles[st.Title] = true

		deadline, err := st.DeadlineTime()
		if err != nil {
			return err
		}
		if deadline.Before(anchorDay) {
			return errors.Wrapf(errors.ErrValidationFailed, "subtask %q deadline %s is before anchor %s",
				st.Title, st.Deadline, anchorDay.Format(DeadlineLayout))
		}
		if st.EstimatedHours <= 0 {
			return errors.Wrapf(errors.ErrValidationFailed, "subtask %q has non-positive estimated hours", st.Title)
		}
	}

	for i := range p.Subtasks {
		st := &p.Subtasks[i]
		for _, dep := range st.Dependencies {
			if dep == st.Title {
				return errors.Wrapf(errors.ErrValidationFailed, "subtask %q depends on itself", st.Title)
			}
			if !titles[dep] {
				return errors.Wrapf(errors.ErrValidationFailed, "subtask %q has dangling dependency %q", st.Title, dep)
			}
		}
	}
	return nil
}
