package repohost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/ctxutil"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// defaultBaseURL is the GitHub REST API root.
const defaultBaseURL = "https://api.github.com"

// branchCandidates are tried in order when fetching a tree. GitHub has no
// cheap "default branch" call that avoids a second round trip, so main is
// tried first and master as fallback.
var branchCandidates = []string{"main", "master"} //nolint:gochecknoglobals // Fixed fallback order

// GitHubConfig holds GitHub client settings.
type GitHubConfig struct {
	// BaseURL overrides the API root (for GitHub Enterprise or tests).
	// Empty means api.github.com.
	BaseURL string

	// Token is the bearer token. Empty means unauthenticated requests
	// with their lower rate limits.
	Token string

	// Timeout bounds tree and file fetches. Zero means the default.
	Timeout time.Duration

	// SearchTimeout bounds code-search requests. Zero means the default.
	SearchTimeout time.Duration
}

// GitHub implements Host against the GitHub REST API.
type GitHub struct {
	cfg    GitHubConfig
	client HTTPClient
	logger zerolog.Logger
}

// Ensure GitHub implements Host.
var _ Host = (*GitHub)(nil)

// NewGitHub creates a GitHub host client. A nil client defaults to
// http.DefaultClient, a nil logger to a no-op logger.
func NewGitHub(cfg GitHubConfig, client HTTPClient, logger *zerolog.Logger) *GitHub {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHostTimeout
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = constants.DefaultSearchTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &GitHub{cfg: cfg, client: client, logger: log}
}

// treeResponse is the GitHub git/trees payload.
type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// GetTree returns all blob paths, trying main then master.
func (g *GitHub) GetTree(ctx context.Context, owner, repo string) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	for _, branch := range branchCandidates {
		endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
			g.cfg.BaseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))

		var tr treeResponse
		err := g.getJSON(ctx, endpoint, g.cfg.Timeout, &tr)
		if errors.Is(err, devplanerrors.ErrFileNotFound) {
			continue // branch absent, try the next candidate
		}
		if err != nil {
			return nil, devplanerrors.Wrapf(err, "fetching tree for %s/%s@%s", owner, repo, branch)
		}

		paths := make([]string, 0, len(tr.Tree))
		for _, entry := range tr.Tree {
			if entry.Type == "blob" {
				paths = append(paths, entry.Path)
			}
		}
		g.logger.Debug().
			Str("repo", owner+"/"+repo).
			Str("branch", branch).
			Int("files", len(paths)).
			Bool("truncated", tr.Truncated).
			Msg("fetched repository tree")
		return paths, nil
	}

	return nil, devplanerrors.Wrapf(devplanerrors.ErrBranchNotFound, "repo %s/%s", owner, repo)
}

// contentsResponse is the GitHub contents payload for a single file.
type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	Size     int64  `json:"size"`
}

// GetFile returns the decoded content of one file, capped at
// constants.MaxFileBytes. Missing files return ErrFileNotFound.
func (g *GitHub) GetFile(ctx context.Context, owner, repo, path string) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.cfg.BaseURL, url.PathEscape(owner), url.PathEscape(repo), escapePath(path))

	var cr contentsResponse
	if err := g.getJSON(ctx, endpoint, g.cfg.Timeout, &cr); err != nil {
		return nil, devplanerrors.Wrapf(err, "fetching %s from %s/%s", path, owner, repo)
	}

	if cr.Encoding != "base64" {
		return nil, devplanerrors.Wrapf(devplanerrors.ErrUpstreamUnavailable, "unexpected encoding %q for %s", cr.Encoding, path)
	}

	// The API inserts newlines into base64 content.
	raw := strings.ReplaceAll(cr.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, devplanerrors.Wrapf(err, "decoding %s", path)
	}
	if len(decoded) > constants.MaxFileBytes {
		decoded = decoded[:constants.MaxFileBytes]
	}
	return decoded, nil
}

// searchResponse is the GitHub code-search payload.
type searchResponse struct {
	Items []struct {
		Path    string `json:"path"`
		HTMLURL string `json:"html_url"`
	} `json:"items"`
}

// SearchCode returns up to constants.MaxSearchResults file matches for a
// keyword query scoped to the repository.
func (g *GitHub) SearchCode(ctx context.Context, owner, repo, query string) ([]CodeMatch, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	q := url.QueryEscape(fmt.Sprintf("%s repo:%s/%s", query, owner, repo))
	endpoint := fmt.Sprintf("%s/search/code?q=%s&per_page=%d", g.cfg.BaseURL, q, constants.MaxSearchResults)

	var sr searchResponse
	if err := g.getJSON(ctx, endpoint, g.cfg.SearchTimeout, &sr); err != nil {
		return nil, devplanerrors.Wrapf(err, "searching %q in %s/%s", query, owner, repo)
	}

	matches := make([]CodeMatch, 0, len(sr.Items))
	for _, item := range sr.Items {
		matches = append(matches, CodeMatch{File: item.Path, URL: item.HTMLURL})
		if len(matches) == constants.MaxSearchResults {
			break
		}
	}
	return matches, nil
}

// repoResponse is one entry of the GitHub user-repos payload.
type repoResponse struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// ListRepos returns the repositories visible to the authenticated user,
// most recently updated first.
func (g *GitHub) ListRepos(ctx context.Context) ([]RepoInfo, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	endpoint := g.cfg.BaseURL + "/user/repos?sort=updated&per_page=100"

	var repos []repoResponse
	if err := g.getJSON(ctx, endpoint, g.cfg.Timeout, &repos); err != nil {
		return nil, devplanerrors.Wrap(err, "listing repositories")
	}

	infos := make([]RepoInfo, 0, len(repos))
	for _, r := range repos {
		infos = append(infos, RepoInfo{
			FullName:      r.FullName,
			Description:   r.Description,
			Private:       r.Private,
			DefaultBranch: r.DefaultBranch,
		})
	}
	return infos, nil
}

// getJSON performs a GET request with GitHub headers and decodes the JSON
// response body into out. Status codes map to the package error taxonomy.
func (g *GitHub) getJSON(ctx context.Context, endpoint string, timeout time.Duration, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return devplanerrors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "devplan")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return devplanerrors.Wrap(devplanerrors.ErrUpstreamUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Best-effort close

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return devplanerrors.ErrFileNotFound
	case http.StatusUnauthorized:
		return devplanerrors.ErrHostAuthFailed
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			return devplanerrors.ErrHostRateLimited
		}
		return devplanerrors.ErrHostAuthFailed
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // Diagnostic only
		return devplanerrors.Wrapf(devplanerrors.ErrUpstreamUnavailable, "status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return devplanerrors.Wrap(err, "decoding response")
	}
	return nil
}

// escapePath escapes each segment of a repository path while preserving
// the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
