// Package repohost provides read-only access to a repository hosting
// service: file trees, file contents, and code search. The pipeline
// tolerates absent optional files (README, manifests) and treats them as
// empty rather than fatal.
package repohost

import (
	"context"
	"net/http"
)

// HTTPClient interface for testability - allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CodeMatch is one file match from a code-search query.
type CodeMatch struct {
	// File is the matched file path within the repository.
	File string `json:"file"`

	// URL links to the match on the host, when available.
	URL string `json:"url,omitempty"`
}

// RepoInfo describes one repository visible to the authenticated user.
type RepoInfo struct {
	// FullName is the "owner/name" identifier.
	FullName string `json:"full_name"`

	// Description is the repository description.
	Description string `json:"description,omitempty"`

	// Private reports whether the repository is private.
	Private bool `json:"private"`

	// DefaultBranch is the repository's default branch name.
	DefaultBranch string `json:"default_branch,omitempty"`
}

// Host is the repository hosting abstraction the analyzer and evidence
// search depend on.
type Host interface {
	// GetTree returns all blob paths in the repository, trying the main
	// branch first and falling back to master.
	GetTree(ctx context.Context, owner, repo string) ([]string, error)

	// GetFile returns the decoded content of one file. Missing files
	// return ErrFileNotFound; callers fetching optional files treat that
	// as absence, not failure.
	GetFile(ctx context.Context, owner, repo, path string) ([]byte, error)

	// SearchCode returns file matches for a keyword query scoped to the
	// repository.
	SearchCode(ctx context.Context, owner, repo, query string) ([]CodeMatch, error)

	// ListRepos returns the repositories visible to the authenticated user.
	ListRepos(ctx context.Context) ([]RepoInfo, error)
}
