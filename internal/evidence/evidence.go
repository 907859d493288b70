// Package evidence searches a repository for files matching task keywords.
// Matches support or refute the claim that functionality already exists;
// an empty result is a meaningful "feature absent" signal, not a failure.
package evidence

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/domain"
	"github.com/devplan/devplan/internal/repohost"
)

// Searcher runs keyword code searches against a repository host.
type Searcher struct {
	host   repohost.Host
	logger zerolog.Logger
}

// NewSearcher creates a Searcher. The logger may be nil, in which case a
// no-op logger is used.
func NewSearcher(host repohost.Host, logger *zerolog.Logger) *Searcher {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Searcher{host: host, logger: log}
}

// Search queries the repository for up to constants.MaxSearchKeywords
// keywords, keeping up to constants.MaxSearchResults matches per keyword.
// A failed individual query is logged and skipped; the evidence list is
// simply smaller. Cancellation stops the loop and returns what was
// collected so far.
func (s *Searcher) Search(ctx context.Context, owner, repo string, keywords []string) []domain.Evidence {
	if len(keywords) > constants.MaxSearchKeywords {
		keywords = keywords[:constants.MaxSearchKeywords]
	}

	evidence := make([]domain.Evidence, 0, len(keywords)*constants.MaxSearchResults)
	for _, keyword := range keywords {
		if ctx.Err() != nil {
			break
		}
		if keyword == "" {
			continue
		}

		matches, err := s.host.SearchCode(ctx, owner, repo, keyword)
		if err != nil {
			// Partial evidence is fine. Log and move on.
			s.logger.Warn().
				Str("repo", owner+"/"+repo).
				Str("keyword", keyword).
				Err(err).
				Msg("evidence search failed for keyword")
			continue
		}

		for _, m := range matches {
			evidence = append(evidence, domain.Evidence{
				Keyword: keyword,
				File:    m.File,
				URL:     m.URL,
			})
			if len(evidence) >= cap(evidence) {
				break
			}
		}
	}
	return evidence
}
