// Package engine orchestrates the task-intelligence pipeline end to end:
// repository analysis, classification, clarification turns, and plan
// generation. The stages live in their own packages; the engine owns
// session lifecycle and sequencing.
package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/analyzer"
	"github.com/devplan/devplan/internal/classify"
	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
	"github.com/devplan/devplan/internal/plan"
	"github.com/devplan/devplan/internal/store"
)

// AnalyzeResult is the outcome of submitting a task: the persisted session
// plus the repository contexts it was classified against.
type AnalyzeResult struct {
	Session  *domain.Session
	Contexts []*domain.RepositoryContext
}

// PlanOutcome is the result of a planning attempt: the session and the
// generated plan with its team matches.
type PlanOutcome struct {
	Session *domain.Session
	Result  *plan.Result
}

// Engine wires the pipeline stages together.
type Engine struct {
	analyzer   *analyzer.Analyzer
	classifier *classify.Classifier
	planner    *plan.Planner
	sessions   store.SessionStore
	clock      clock.Clock
	logger     zerolog.Logger
	newID      func() string
}

// New creates an Engine. The logger may be nil, in which case a no-op
// logger is used.
func New(a *analyzer.Analyzer, c *classify.Classifier, p *plan.Planner, sessions store.SessionStore, clk clock.Clock, logger *zerolog.Logger) *Engine {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Engine{
		analyzer:   a,
		classifier: c,
		planner:    p,
		sessions:   sessions,
		clock:      clk,
		logger:     log,
		newID:      uuid.NewString,
	}
}

// AnalyzeTask runs a task through analysis and classification. The session
// ends awaiting answers or plan-ready; either way it is persisted and the
// caller can resume by id.
func (e *Engine) AnalyzeTask(ctx context.Context, taskText string, repos []domain.RepoRef) (*AnalyzeResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(taskText) == "" {
		return nil, devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "task text is empty")
	}
	if len(repos) == 0 {
		return nil, devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "no repositories given")
	}

	contexts := make([]*domain.RepositoryContext, 0, len(repos))
	for _, repo := range repos {
		rc, err := e.analyzer.Analyze(ctx, repo)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, rc)
	}

	now := e.clock.Now().UTC()
	sess := &domain.Session{
		ID:        e.newID(),
		State:     domain.StateReceived,
		TaskText:  taskText,
		Repos:     repos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	e.logger.Info().Str("session", sess.ID).Int("repos", len(repos)).Msg("task received")

	if err := e.classifier.Classify(ctx, sess, contexts[0]); err != nil {
		return nil, err
	}
	return &AnalyzeResult{Session: sess, Contexts: contexts}, nil
}

// GeneratePlan resumes a session toward a plan. Answers are required when
// the session is awaiting them and always unblock it; they flow into the
// plan prompt as provided.
func (e *Engine) GeneratePlan(ctx context.Context, sessionID string, answers map[string]string, roster []domain.TeamMember) (*PlanOutcome, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.State == domain.StateAwaitingAnswers {
		if len(answers) == 0 {
			return nil, devplanerrors.Wrapf(devplanerrors.ErrInvalidSessionState,
				"session %s is awaiting answers to %d question(s)", sess.ID, len(sess.Classification.Questions))
		}
		if err = e.classifier.SubmitAnswers(ctx, sess, answers); err != nil {
			return nil, err
		}
	}

	// Cache hit in the common case; the repository was analyzed when the
	// task was submitted.
	var repoCtx *domain.RepositoryContext
	if len(sess.Repos) > 0 {
		if repoCtx, err = e.analyzer.Analyze(ctx, sess.Repos[0]); err != nil {
			return nil, err
		}
	}

	result, err := e.planner.Generate(ctx, sess, repoCtx, roster)
	if err != nil {
		return nil, err
	}
	return &PlanOutcome{Session: sess, Result: result}, nil
}
