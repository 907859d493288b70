package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Upstream services
	// ===================
	{
		err: ErrUpstreamUnavailable,
		info: ErrorInfo{
			Message: "The generation service or repository host could not be reached.",
			Action:  "Check your network connection and API keys, then retry.",
		},
	},
	{
		err: ErrUnparsableResponse,
		info: ErrorInfo{
			Message: "The generation service returned a response that could not be parsed.",
			Action:  "Retry the request. If the issue persists, try a different model.",
		},
	},
	{
		err: ErrValidationFailed,
		info: ErrorInfo{
			Message: "The generated output failed validation checks.",
			Action:  "Retry the request. The service produced inconsistent output.",
		},
	},
	{
		err: ErrMaxRetriesExceeded,
		info: ErrorInfo{
			Message: "Maximum retry attempts reached.",
			Action:  "Wait a moment and retry, or increase the retry limit in config.",
		},
	},
	{
		err: ErrMissingAPIKey,
		info: ErrorInfo{
			Message: "No generation API key is configured.",
			Action:  "Set DEVPLAN_GEN_API_KEY or add gen.api_key to config.yaml.",
		},
	},

	// ===================
	// Repository host
	// ===================
	{
		err: ErrHostAuthFailed,
		info: ErrorInfo{
			Message: "Repository host authentication failed.",
			Action:  "Set DEVPLAN_GITHUB_TOKEN or check that the token is valid.",
		},
	},
	{
		err: ErrHostRateLimited,
		info: ErrorInfo{
			Message: "Repository host API rate limit exceeded.",
			Action:  "Wait a few minutes, or set a token for higher limits.",
		},
	},
	{
		err: ErrBranchNotFound,
		info: ErrorInfo{
			Message: "Neither the main nor the master branch exists for this repository.",
			Action:  "Verify the repository name and that it has a default branch.",
		},
	},
	{
		err: ErrInvalidRepoRef,
		info: ErrorInfo{
			Message: "The repository reference must be in owner/name form.",
			Action:  "Pass the repository as --repo owner/name.",
		},
	},

	// ===================
	// Sessions & store
	// ===================
	{
		err: ErrSessionNotFound,
		info: ErrorInfo{
			Message: "The specified session was not found.",
			Action:  "Run 'devplan analyze' first to create a session.",
		},
	},
	{
		err: ErrSessionCorrupted,
		info: ErrorInfo{
			Message: "The session state file is corrupted.",
			Action:  "Delete the session directory under ~/.devplan/sessions and re-analyze.",
		},
	},
	{
		err: ErrInvalidSessionState,
		info: ErrorInfo{
			Message: "The session is not in a state that allows this operation.",
			Action:  "Answer the outstanding questions before generating a plan.",
		},
	},
	{
		err: ErrStoreUnavailable,
		info: ErrorInfo{
			Message: "The repository context cache could not be reached.",
			Action:  "Check the cache.addr setting, or run without a cache backend.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire lock. Another process may be using the session.",
			Action:  "Wait and try again, or check for stuck devplan processes.",
		},
	},

	// ===================
	// Roster & config
	// ===================
	{
		err: ErrRosterNotFound,
		info: ErrorInfo{
			Message: "The team roster file was not found.",
			Action:  "Create a roster YAML file and point roster.path at it.",
		},
	},
	{
		err: ErrRosterInvalid,
		info: ErrorInfo{
			Message: "The team roster file failed validation.",
			Action:  "Check the roster YAML for missing names or negative capacities.",
		},
	},
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "Configuration file not found.",
			Action:  "Create ~/.devplan/config.yaml or a project .devplan/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "Configuration failed validation.",
			Action:  "Fix the reported setting in config.yaml or the DEVPLAN_ environment variable.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure the config file exists and is valid YAML.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "An invalid output format was specified.",
			Action:  "Use one of: text, json.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
