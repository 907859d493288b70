// Package constants provides centralized constant values used throughout devplan.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by devplan for organizing data.
const (
	// DevplanHome is the hidden directory name where devplan stores all its data.
	// This directory is created in the user's home directory.
	DevplanHome = ".devplan"

	// SessionsDir is the directory name where clarification-session files are stored.
	SessionsDir = "sessions"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ConfigFileName is the name of the YAML configuration file, both globally
	// (~/.devplan/config.yaml) and per project (.devplan/config.yaml).
	ConfigFileName = "config.yaml"
)

// File names used by devplan for session persistence.
const (
	// SessionFileName is the name of the JSON file that stores session state.
	SessionFileName = "session.json"

	// HistoryFileName is the name of the append-only JSON-lines file that
	// records session events (classification, answers, generated plans).
	HistoryFileName = "history.jsonl"
)

// Log file settings for the rotating CLI log.
const (
	// CLILogFileName is the name of the rotating CLI log file.
	CLILogFileName = "devplan.log"

	// LogMaxSizeMB is the maximum size in megabytes before log rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the maximum number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of retained log files.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Generation parameters for each pipeline stage. Temperatures and token
// budgets differ by stage: analysis wants determinism, planning wants a
// little creative slack.
const (
	// DefaultModel is the text-generation model used when none is configured.
	DefaultModel = "gemini-2.0-flash-exp"

	// AnalysisTemperature is the sampling temperature for repository analysis.
	AnalysisTemperature float32 = 0.1

	// AnalysisMaxTokens is the output token budget for repository analysis.
	AnalysisMaxTokens int32 = 4096

	// TypeDetectTemperature is the sampling temperature for task type detection.
	TypeDetectTemperature float32 = 0.3

	// TypeDetectMaxTokens is the output token budget for task type detection.
	TypeDetectMaxTokens int32 = 512

	// ClarityTemperature is the sampling temperature for ambiguity assessment.
	ClarityTemperature float32 = 0.2

	// ClarityMaxTokens is the output token budget for ambiguity assessment.
	ClarityMaxTokens int32 = 512

	// PlanTemperature is the sampling temperature for plan generation.
	PlanTemperature float32 = 0.6

	// PlanMaxTokens is the output token budget for plan generation.
	PlanMaxTokens int32 = 2048
)

// Limits applied when building repository context for prompts.
const (
	// MaxPromptFilePaths caps how many file paths from the repository tree
	// are included in the analysis prompt.
	MaxPromptFilePaths = 100

	// MaxReadmeBytes caps how much of the README is included in the
	// analysis prompt.
	MaxReadmeBytes = 3000

	// MaxManifestFiles caps how many dependency manifests are fetched
	// to refine the tech-stack descriptor.
	MaxManifestFiles = 5

	// MaxFileBytes caps decoded file content fetched from the repository host.
	MaxFileBytes = 1 << 20
)

// Limits applied to codebase evidence search.
const (
	// MaxSearchKeywords caps how many keywords are searched per task.
	MaxSearchKeywords = 3

	// MaxSearchResults caps how many file matches are kept per keyword.
	MaxSearchResults = 5
)

// Limits applied to classifier output.
const (
	// MaxClarifyingQuestions caps how many questions an ambiguous
	// classification may carry.
	MaxClarifyingQuestions = 2
)

// Limits applied to matcher output.
const (
	// MaxMatchCandidates caps how many scored members a match returns.
	MaxMatchCandidates = 3

	// UnassignedMember is the sentinel assignee used when no team member
	// scores against a subtask.
	UnassignedMember = "Unassigned"
)

// Timeout configurations for various operations.
const (
	// DefaultGenTimeout is the default maximum duration for a single
	// text-generation call.
	DefaultGenTimeout = 60 * time.Second

	// DefaultHostTimeout is the default maximum duration for repository
	// tree and file fetches.
	DefaultHostTimeout = 10 * time.Second

	// DefaultSearchTimeout is the default maximum duration for a code
	// search request. Search is the slowest host endpoint.
	DefaultSearchTimeout = 30 * time.Second

	// FollowUpInterval is the default interval between follow-up sweeps.
	FollowUpInterval = 2 * time.Minute
)

// Retry configuration defaults for transient transport failures.
const (
	// MaxRetryAttempts is the maximum number of retry attempts for
	// transient generation-transport errors.
	MaxRetryAttempts = 3

	// InitialBackoff is the initial backoff duration before the first retry.
	InitialBackoff = 1 * time.Second

	// BackoffMultiplier is the factor applied to the backoff after each retry.
	BackoffMultiplier = 2
)

// Schema version constants for data migration support.
const (
	// SessionSchemaVersion is the current version of the session JSON schema.
	SessionSchemaVersion = "1.0"
)
