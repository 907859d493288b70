// Package plan generates execution plans for classified tasks: subtasks
// with deadlines, effort estimates, dependencies, and team assignments.
// The generation service proposes the decomposition; deadlines are
// validated against a real clock and assignments are computed locally.
package plan

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
	"github.com/devplan/devplan/internal/extract"
	"github.com/devplan/devplan/internal/gen"
	"github.com/devplan/devplan/internal/match"
	"github.com/devplan/devplan/internal/store"
)

// planResponse is the shape expected from the plan generation call.
type planResponse struct {
	Goal       string           `json:"goal"`
	Complexity string           `json:"complexity"`
	Subtasks   []domain.Subtask `json:"subtasks"`
}

// Result pairs a validated plan with the per-subtask match rankings that
// produced its assignments.
type Result struct {
	Plan    *domain.Plan
	Matches map[string][]domain.MatchResult
}

// Planner turns a plan-ready session into a validated, assigned plan.
type Planner struct {
	gen      gen.Generator
	sessions store.SessionStore
	clock    clock.Clock
	logger   zerolog.Logger
}

// New creates a Planner. The logger may be nil, in which case a no-op
// logger is used.
func New(generator gen.Generator, sessions store.SessionStore, clk clock.Clock, logger *zerolog.Logger) *Planner {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Planner{
		gen:      generator,
		sessions: sessions,
		clock:    clk,
		logger:   log,
	}
}

// Generate produces a plan for a plan-ready session. The plan is validated
// against today's date before assignment; an invalid plan is rejected
// outright, never repaired. On success the plan is appended to the session
// history.
func (p *Planner) Generate(ctx context.Context, sess *domain.Session, repoCtx *domain.RepositoryContext, roster []domain.TeamMember) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "session is nil")
	}
	if sess.State != domain.StatePlanReady {
		return nil, devplanerrors.Wrapf(devplanerrors.ErrInvalidSessionState,
			"planning requires state %q, session %s is %q", domain.StatePlanReady, sess.ID, sess.State)
	}
	if sess.Classification == nil {
		return nil, devplanerrors.Wrapf(devplanerrors.ErrInvalidSessionState,
			"session %s has no classification", sess.ID)
	}

	anchor := p.clock.Now().UTC()
	raw, err := p.gen.Generate(ctx, gen.Request{
		Label:       "plan",
		Prompt:      buildPlanPrompt(sess, repoCtx, roster, anchor),
		Temperature: constants.PlanTemperature,
		MaxTokens:   constants.PlanMaxTokens,
	})
	if err != nil {
		return nil, devplanerrors.Wrapf(err, "generating plan for session %s", sess.ID)
	}

	var resp planResponse
	if err = extract.ExtractInto(raw, "plan", &resp); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		MainTask:    sess.TaskText,
		Goal:        resp.Goal,
		TaskType:    sess.Classification.TaskType,
		Complexity:  resp.Complexity,
		Subtasks:    resp.Subtasks,
		GeneratedAt: anchor,
	}
	if err = plan.Validate(anchor); err != nil {
		return nil, err
	}

	matches := match.Assign(plan, roster)
	if err = p.sessions.AppendHistory(ctx, sess.ID, &domain.HistoryEntry{
		Type: domain.HistoryPlan,
		At:   anchor,
		Plan: plan,
	}); err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("session", sess.ID).
		Int("subtasks", len(plan.Subtasks)).
		Str("complexity", plan.Complexity).
		Msg("plan generated")
	return &Result{Plan: plan, Matches: matches}, nil
}
