// Package classify drives a task through the classification state machine:
// type detection, evidence search, and ambiguity assessment. Every state
// transition is persisted before the next stage runs, so an interrupted
// session can be inspected and resumed.
package classify

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
	"github.com/devplan/devplan/internal/store"
)

// EvidenceSearcher gathers code-search evidence for task keywords.
// Satisfied by evidence.Searcher.
type EvidenceSearcher interface {
	Search(ctx context.Context, owner, repo string, keywords []string) []domain.Evidence
}

// typeDetection is the shape expected from the type-detection call.
type typeDetection struct {
	TaskType   string   `json:"task_type"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence_score"`
	Reasoning  string   `json:"reasoning"`
}

// clarityAssessment is the shape expected from the clarity call.
type clarityAssessment struct {
	Status     string            `json:"status"`
	Questions  []domain.Question `json:"questions"`
	Confidence float64           `json:"confidence_score"`
	Reasoning  string            `json:"reasoning"`
}

// Classifier runs the classification stages against one session.
type Classifier struct {
	gen      gen.Generator
	searcher EvidenceSearcher
	sessions store.SessionStore
	clock    clock.Clock
	logger   zerolog.Logger
}

// New creates a Classifier. The logger may be nil, in which case a no-op
// logger is used.
func New(generator gen.Generator, searcher EvidenceSearcher, sessions store.SessionStore, clk clock.Clock, logger *zerolog.Logger) *Classifier {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Classifier{
		gen:      generator,
		searcher: searcher,
		sessions: sessions,
		clock:    clk,
		logger:   log,
	}
}

// Classify runs a received session through type detection, evidence search,
// and clarity assessment. The session ends in StateAwaitingAnswers when the
// task is ambiguous or StatePlanReady when it is clear. Each stage persists
// the session before the next runs.
func (c *Classifier) Classify(ctx context.Context, sess *domain.Session, repoCtx *domain.RepositoryContext) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if sess == nil {
		return devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "session is nil")
	}
	if sess.State != domain.StateReceived {
		return devplanerrors.Wrapf(devplanerrors.ErrInvalidSessionState,
			"classify requires state %q, session %s is %q", domain.StateReceived, sess.ID, sess.State)
	}

	detection, err := c.detectType(ctx, sess, repoCtx)
	if err != nil {
		return err
	}
	sess.State = domain.StateTypeDetected
	if err = c.sessions.Update(ctx, sess); err != nil {
		return err
	}

	c.gatherEvidence(ctx, sess, detection)
	sess.State = domain.StateEvidenceGathered
	if err = c.sessions.Update(ctx, sess); err != nil {
		return err
	}

	return c.assessClarity(ctx, sess, detection, repoCtx)
}

// SubmitAnswers records clarification answers and moves the session to
// StatePlanReady. The session must be awaiting answers. The answers are
// taken at face value and flow into the plan prompt; no second clarity
// assessment runs, so submitting answers always unblocks planning.
func (c *Classifier) SubmitAnswers(ctx context.Context, sess *domain.Session, answers map[string]string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if sess == nil {
		return devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "session is nil")
	}
	if sess.State != domain.StateAwaitingAnswers {
		return devplanerrors.Wrapf(devplanerrors.ErrInvalidSessionState,
			"answers require state %q, session %s is %q", domain.StateAwaitingAnswers, sess.ID, sess.State)
	}
	if len(answers) == 0 {
		return devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "no answers provided")
	}

	if sess.Answers == nil {
		sess.Answers = make(map[string]string, len(answers))
	}
	for q, a := range answers {
		sess.Answers[q] = a
	}
	if err := c.sessions.AppendHistory(ctx, sess.ID, &domain.HistoryEntry{
		Type:    domain.HistoryAnswers,
		At:      c.clock.Now().UTC(),
		Answers: answers,
	}); err != nil {
		return err
	}

	sess.State = domain.StatePlanReady
	c.logger.Info().
		Str("session", sess.ID).
		Int("answers", len(answers)).
		Msg("answers recorded, session unblocked")
	return c.sessions.Update(ctx, sess)
}

func (c *Classifier) detectType(ctx context.Context, sess *domain.Session, repoCtx *domain.RepositoryContext) (*typeDetection, error) {
	raw, err := c.gen.Generate(ctx, gen.Request{
		Label:       "type_detection",
		Prompt:      buildTypeDetectionPrompt(sess.TaskText, repoCtx),
		Temperature: constants.TypeDetectTemperature,
		MaxTokens:   constants.TypeDetectMaxTokens,
	})
	if err != nil {
		return nil, devplanerrors.Wrapf(err, "detecting type for session %s", sess.ID)
	}

	var detection typeDetection
	if err = extract.ExtractInto(raw, "type_detection", &detection); err != nil {
		return nil, err
	}

	switch domain.TaskType(detection.TaskType) {
	case domain.TaskTypeNew, domain.TaskTypeUpdate, domain.TaskTypeBoth:
	default:
		return nil, devplanerrors.Wrapf(devplanerrors.ErrValidationFailed,
			"unknown task type %q", detection.TaskType)
	}
	if len(detection.Keywords) > constants.MaxSearchKeywords {
		detection.Keywords = detection.Keywords[:constants.MaxSearchKeywords]
	}

	// Confidence is advisory telemetry. It never gates control flow.
	c.logger.Debug().
		Str("session", sess.ID).
		Str("task_type", detection.TaskType).
		Float64("confidence", detection.Confidence).
		Msg("task type detected")
	return &detection, nil
}

// gatherEvidence searches the session's repositories for the detected
// keywords. Only tasks touching existing code warrant a search; an empty
// result set is itself evidence of absence.
func (c *Classifier) gatherEvidence(ctx context.Context, sess *domain.Session, detection *typeDetection) {
	taskType := domain.TaskType(detection.TaskType)
	if taskType != domain.TaskTypeUpdate && taskType != domain.TaskTypeBoth {
		return
	}

	var evidence []domain.Evidence
	for _, repo := range sess.Repos {
		evidence = append(evidence, c.searcher.Search(ctx, repo.Owner, repo.Name, detection.Keywords)...)
	}
	sess.Evidence = evidence
	c.logger.Debug().
		Str("session", sess.ID).
		Int("matches", len(evidence)).
		Msg("evidence gathered")
}

func (c *Classifier) assessClarity(ctx context.Context, sess *domain.Session, detection *typeDetection, repoCtx *domain.RepositoryContext) error {
	raw, err := c.gen.Generate(ctx, gen.Request{
		Label:       "clarity",
		Prompt:      buildClarityPrompt(sess, detection, repoCtx),
		Temperature: constants.ClarityTemperature,
		MaxTokens:   constants.ClarityMaxTokens,
	})
	if err != nil {
		return devplanerrors.Wrapf(err, "assessing clarity for session %s", sess.ID)
	}

	var assessment clarityAssessment
	if err = extract.ExtractInto(raw, "clarity", &assessment); err != nil {
		return err
	}
	if len(assessment.Questions) > constants.MaxClarifyingQuestions {
		assessment.Questions = assessment.Questions[:constants.MaxClarifyingQuestions]
	}

	result := &domain.ClassificationResult{
		TaskType:        domain.TaskType(detection.TaskType),
		Keywords:        detection.Keywords,
		Status:          domain.ClarityStatus(assessment.Status),
		Questions:       assessment.Questions,
		ConfidenceScore: assessment.Confidence,
		Reasoning:       assessment.Reasoning,
	}
	if err = result.Validate(); err != nil {
		return err
	}

	c.logger.Debug().
		Str("session", sess.ID).
		Str("status", string(result.Status)).
		Float64("confidence", result.ConfidenceScore).
		Msg("clarity assessed")

	// The assessment itself is a persisted transition; the ambiguity
	// outcome then routes the session to its resting state.
	sess.Classification = result
	sess.State = domain.StateClarityAssessed
	if err = c.sessions.Update(ctx, sess); err != nil {
		return err
	}

	if result.Status == domain.ClarityAmbiguous {
		sess.State = domain.StateAwaitingAnswers
	} else {
		sess.State = domain.StatePlanReady
	}

	if err = c.sessions.AppendHistory(ctx, sess.ID, &domain.HistoryEntry{
		Type:           domain.HistoryClassification,
		At:             c.clock.Now().UTC(),
		Classification: result,
	}); err != nil {
		return err
	}
	return c.sessions.Update(ctx, sess)
}
