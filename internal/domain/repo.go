// Package domain provides shared domain types for the devplan task-intelligence
// pipeline. These types are used across all internal packages to ensure
// consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"strings"
	"time"

	"github.com/devplan/devplan/internal/errors"
)

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	// Owner is the repository owner or organization.
	Owner string `json:"owner"`

	// Name is the repository name.
	Name string `json:"name"`
}

// ParseRepoRef parses an "owner/name" string into a RepoRef.
// Returns ErrInvalidRepoRef when the input is not in owner/name form.
func ParseRepoRef(s string) (RepoRef, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, errors.Wrapf(errors.ErrInvalidRepoRef, "parsing %q", s)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

// String returns the canonical "owner/name" form, which is also the
// context-cache key.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// TechStack describes the detected technology of a repository.
type TechStack struct {
	// PrimaryLanguage is the dominant language by file count.
	PrimaryLanguage string `json:"primary_language"`

	// SecondaryLanguages lists other languages present in the tree.
	SecondaryLanguages []string `json:"secondary_languages,omitempty"`

	// Frameworks lists detected frameworks (from manifests and analysis).
	Frameworks []string `json:"frameworks,omitempty"`

	// Datastores lists detected databases and caches.
	Datastores []string `json:"datastores,omitempty"`
}

// Module describes one logical module of the analyzed repository.
type Module struct {
	// Name is the module name (e.g., "auth", "reports").
	Name string `json:"name"`

	// Description summarizes what the module does.
	Description string `json:"description"`

	// RelevantFiles lists file paths belonging to the module.
	RelevantFiles []string `json:"relevant_files,omitempty"`
}

// APISurface describes the externally visible API of the repository.
type APISurface struct {
	// Endpoints lists detected API endpoints or entry points.
	Endpoints []string `json:"endpoints,omitempty"`

	// AuthMethod names the detected authentication mechanism, if any.
	AuthMethod string `json:"auth_method,omitempty"`
}

// RepoMetrics holds raw measurements captured during analysis.
// These are facts about the tree, not generation output.
type RepoMetrics struct {
	// FileCount is the total number of blobs in the repository tree.
	FileCount int `json:"file_count"`

	// Manifests lists the dependency manifest file names found.
	Manifests []string `json:"manifests,omitempty"`

	// ExtensionCounts maps file extensions to occurrence counts for the
	// most common extensions.
	ExtensionCounts map[string]int `json:"extension_counts,omitempty"`
}

// RepositoryContext is the cached semantic summary of one repository,
// keyed by "owner/name". Immutable once cached except for the access
// counter and updated_at; recomputation is an explicit overwrite.
//
// Example JSON representation:
//
//	{
//	    "repo": {"owner": "octocat", "name": "hello-world"},
//	    "summary": "A REST API for ...",
//	    "tech_stack": {"primary_language": "Go", ...},
//	    "modules": [{"name": "reports", ...}],
//	    "api_surface": {"endpoints": ["/reports"], "auth_method": "jwt"},
//	    "metrics": {"file_count": 412, ...},
//	    "access_count": 3,
//	    "created_at": "2026-08-30T10:00:00Z",
//	    "updated_at": "2026-08-31T09:00:00Z"
//	}
type RepositoryContext struct {
	// Repo identifies the analyzed repository.
	Repo RepoRef `json:"repo"`

	// Summary is the free-text project summary.
	Summary string `json:"summary"`

	// TechStack is the detected technology descriptor.
	TechStack TechStack `json:"tech_stack"`

	// Modules lists the detected logical modules.
	Modules []Module `json:"modules,omitempty"`

	// APISurface describes detected endpoints and auth.
	APISurface APISurface `json:"api_surface"`

	// Metrics holds raw tree measurements.
	Metrics RepoMetrics `json:"metrics"`

	// AccessCount is incremented on every cache hit.
	AccessCount int64 `json:"access_count"`

	// CreatedAt is when this context was first computed.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this context was last written or touched.
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the cache key for this context.
func (rc *RepositoryContext) Key() string {
	return rc.Repo.String()
}

// Evidence is one code-search match supporting or refuting the claim
// that functionality already exists in the repository.
type Evidence struct {
	// Keyword is the search keyword that produced this match.
	Keyword string `json:"keyword"`

	// File is the matched file path.
	File string `json:"file"`

	// URL links to the match on the repository host, when available.
	URL string `json:"url,omitempty"`
}
