// Package errors provides centralized error handling for devplan.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrUpstreamUnavailable indicates that the text-generation service or
	// the repository host could not be reached, timed out, or returned an
	// empty response after retries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUnparsableResponse indicates that a generation response yielded no
	// valid JSON document even after the repair pipeline ran.
	ErrUnparsableResponse = errors.New("unparsable response")

	// ErrValidationFailed indicates that a parsed generation response was
	// structurally valid JSON but semantically inconsistent (for example an
	// ambiguous classification with zero questions, or a plan with a
	// dangling dependency).
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound indicates that a requested file does not exist in the
	// repository. Callers fetching optional files (README, manifests) treat
	// this as absence rather than failure.
	ErrFileNotFound = errors.New("file not found")

	// ErrBranchNotFound indicates that neither the main nor the master
	// branch exists for the repository.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrHostAuthFailed indicates that the repository host rejected the
	// configured credentials.
	ErrHostAuthFailed = errors.New("repository host authentication failed")

	// ErrHostRateLimited indicates that the repository host API rate limit
	// was exceeded.
	ErrHostRateLimited = errors.New("repository host rate limit exceeded")

	// ErrSessionNotFound indicates that no clarification session exists for
	// the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates that a session with this identifier
	// already exists.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionCorrupted indicates that a persisted session file could not
	// be decoded.
	ErrSessionCorrupted = errors.New("session file corrupted")

	// ErrInvalidSessionState indicates that an operation was attempted on a
	// session whose state does not permit it (for example generating a plan
	// while answers are still outstanding).
	ErrInvalidSessionState = errors.New("invalid session state")

	// ErrContextNotFound indicates that no cached repository context exists
	// for the given key.
	ErrContextNotFound = errors.New("repository context not found")

	// ErrStoreUnavailable indicates that the context store backend could
	// not be reached.
	ErrStoreUnavailable = errors.New("context store unavailable")

	// ErrMaxRetriesExceeded indicates that transient transport retries were
	// exhausted without success.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrRosterNotFound indicates that the team roster file does not exist.
	ErrRosterNotFound = errors.New("roster file not found")

	// ErrRosterInvalid indicates that the team roster file failed to decode
	// or contained invalid member entries.
	ErrRosterInvalid = errors.New("roster file invalid")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates the configuration failed validation.
	ErrConfigInvalid = errors.New("config invalid")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidRepoRef indicates a repository reference that is not in
	// owner/name form.
	ErrInvalidRepoRef = errors.New("invalid repository reference")

	// ErrInvalidArgument indicates an invalid command-line argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPathTraversal indicates a session identifier that would escape the
	// sessions directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrLockTimeout indicates that a file lock could not be acquired
	// within the deadline.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrMissingAPIKey indicates that no generation API key is configured.
	ErrMissingAPIKey = errors.New("generation api key not configured")
)
