package domain

import (
	"time"

	"github.com/devplan/devplan/internal/errors"
)

// SessionState represents where a session is in the classification and
// planning state machine.
type SessionState string

// Session state machine values. The happy path is
// Received -> TypeDetected -> EvidenceGathered -> ClarityAssessed -> PlanReady;
// an ambiguous classification detours through AwaitingAnswers.
const (
	// StateReceived is the initial state after a task is submitted.
	StateReceived SessionState = "received"

	// StateTypeDetected means the task type classification completed.
	StateTypeDetected SessionState = "type_detected"

	// StateEvidenceGathered means evidence search completed (possibly empty).
	StateEvidenceGathered SessionState = "evidence_gathered"

	// StateClarityAssessed means the ambiguity assessment completed.
	StateClarityAssessed SessionState = "clarity_assessed"

	// StateAwaitingAnswers means the session is parked on open questions.
	StateAwaitingAnswers SessionState = "awaiting_answers"

	// StatePlanReady means planning may proceed (or already has).
	StatePlanReady SessionState = "plan_ready"
)

// TaskType classifies a work item against the repository.
type TaskType string

// Task type values.
const (
	// TaskTypeNew means the task adds functionality that does not exist yet.
	TaskTypeNew TaskType = "new"

	// TaskTypeUpdate means the task modifies existing functionality.
	TaskTypeUpdate TaskType = "update"

	// TaskTypeBoth means the task both adds and modifies functionality.
	TaskTypeBoth TaskType = "both"
)

// ClarityStatus is the outcome of the ambiguity assessment.
type ClarityStatus string

// Clarity status values.
const (
	// ClarityClear means planning can proceed without questions.
	ClarityClear ClarityStatus = "clear"

	// ClarityAmbiguous means clarification questions must be answered first.
	ClarityAmbiguous ClarityStatus = "ambiguous"
)

// Question is one clarification question produced by an ambiguous
// classification. Questions target business logic, never the detected
// tech stack.
type Question struct {
	// Question is the question text.
	Question string `json:"question"`

	// Explanation says why the answer matters.
	Explanation string `json:"explanation,omitempty"`

	// Impact describes what changes depending on the answer.
	Impact string `json:"impact,omitempty"`

	// Options lists suggested answers, when the question is a choice.
	Options []string `json:"options,omitempty"`
}

// ClassificationResult is the combined output of the type-detection and
// clarity-assessment generation calls.
//
// Invariant: Status == ambiguous requires at least one Question;
// Status == clear requires an empty question list. Violations are
// rejected as validation failures, never silently normalized.
type ClassificationResult struct {
	// TaskType is the detected task type.
	TaskType TaskType `json:"task_type"`

	// Keywords are the evidence-search keywords extracted during type
	// detection.
	Keywords []string `json:"keywords,omitempty"`

	// Status is the clarity outcome.
	Status ClarityStatus `json:"status"`

	// Questions holds the clarification questions when ambiguous.
	Questions []Question `json:"questions,omitempty"`

	// ConfidenceScore is the service's self-reported confidence.
	// Advisory telemetry only. Control flow never branches on it.
	ConfidenceScore float64 `json:"confidence_score,omitempty"`

	// Reasoning is the service's free-text explanation.
	Reasoning string `json:"reasoning,omitempty"`
}

// Validate checks the ambiguity/question biconditional.
func (c *ClassificationResult) Validate() error {
	switch c.Status {
	case ClarityAmbiguous:
		if len(c.Questions) == 0 {
			return errors.Wrap(errors.ErrValidationFailed, "ambiguous classification with no questions")
		}
	case ClarityClear:
		if len(c.Questions) != 0 {
			return errors.Wrap(errors.ErrValidationFailed, "clear classification with questions")
		}
	default:
		return errors.Wrapf(errors.ErrValidationFailed, "unknown clarity status %q", c.Status)
	}

	switch c.TaskType {
	case TaskTypeNew, TaskTypeUpdate, TaskTypeBoth:
	default:
		return errors.Wrapf(errors.ErrValidationFailed, "unknown task type %q", c.TaskType)
	}
	return nil
}

// Session is the per-task classification and planning context, keyed by an
// opaque session id. A session has at most one current ClassificationResult;
// a new classification replaces the current pointer while the full history
// remains append-only in the session store.
//
// Example JSON representation:
//
//	{
//	    "id": "f1c9...",
//	    "state": "awaiting_answers",
//	    "task_text": "Add CSV export to the reports page",
//	    "repos": [{"owner": "octocat", "name": "hello-world"}],
//	    "classification": {...},
//	    "evidence": [...],
//	    "answers": {"format": "RFC 4180"},
//	    "created_at": "2026-08-31T10:00:00Z",
//	    "updated_at": "2026-08-31T10:02:00Z",
//	    "schema_version": "1.0"
//	}
type Session struct {
	// ID is the opaque session identifier.
	ID string `json:"id"`

	// State is the current state machine position.
	State SessionState `json:"state"`

	// TaskText is the original natural-language work item.
	TaskText string `json:"task_text"`

	// Repos lists the repositories analyzed for this task.
	Repos []RepoRef `json:"repos"`

	// Classification is the most recent classification result, nil before
	// the first assessment completes.
	Classification *ClassificationResult `json:"classification,omitempty"`

	// Evidence holds the code-search matches gathered for this task.
	Evidence []Evidence `json:"evidence,omitempty"`

	// Answers maps question text to the caller-supplied answer.
	Answers map[string]string `json:"answers,omitempty"`

	// CreatedAt is when the session was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the session was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// SchemaVersion enables forward-compatible schema migrations.
	SchemaVersion string `json:"schema_version"`
}

// HistoryEventType labels entries in the append-only session history.
type HistoryEventType string

// History event types.
const (
	// HistoryClassification records a completed classification.
	HistoryClassification HistoryEventType = "classification"

	// HistoryAnswers records a set of clarification answers.
	HistoryAnswers HistoryEventType = "answers"

	// HistoryPlan records a generated plan.
	HistoryPlan HistoryEventType = "plan"
)

// HistoryEntry is one event in a session's append-only history.
type HistoryEntry struct {
	// Type labels the event payload.
	Type HistoryEventType `json:"type"`

	// At is when the event was recorded.
	At time.Time `json:"at"`

	// Classification is set for classification events.
	Classification *ClassificationResult `json:"classification,omitempty"`

	// Answers is set for answer events.
	Answers map[string]string `json:"answers,omitempty"`

	// Plan is set for plan events.
	Plan *Plan `json:"plan,omitempty"`
}
