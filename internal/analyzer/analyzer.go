// Package analyzer builds and caches semantic repository contexts.
//
// Analysis is expensive (one tree walk, several file fetches, one
// generation call), so results are cached by "owner/name" and concurrent
// analyses of the same repository are collapsed into a single computation.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
	"github.com/devplan/devplan/internal/extract"
	"github.com/devplan/devplan/internal/gen"
	"github.com/devplan/devplan/internal/repohost"
	"github.com/devplan/devplan/internal/store"
)

// manifestFiles are root-level dependency manifests fetched to refine the
// tech-stack descriptor. Order matters: the list is scanned front to back
// and fetching stops after constants.MaxManifestFiles.
var manifestFiles = []string{ //nolint:gochecknoglobals // Static lookup table
	"package.json",
	"requirements.txt",
	"pyproject.toml",
	"go.mod",
	"Cargo.toml",
	"pom.xml",
	"build.gradle",
	"Gemfile",
	"composer.json",
	"pubspec.yaml",
	"Dockerfile",
}

// languageByExtension maps file extensions to language names for the
// histogram-based primary-language fallback.
var languageByExtension = map[string]string{ //nolint:gochecknoglobals // Static lookup table
	"go":    "Go",
	"py":    "Python",
	"js":    "JavaScript",
	"jsx":   "JavaScript",
	"ts":    "TypeScript",
	"tsx":   "TypeScript",
	"rb":    "Ruby",
	"rs":    "Rust",
	"java":  "Java",
	"kt":    "Kotlin",
	"php":   "PHP",
	"cs":    "C#",
	"c":     "C",
	"cpp":   "C++",
	"swift": "Swift",
}

// analysisResponse is the shape expected from the analysis generation call.
type analysisResponse struct {
	Summary    string            `json:"summary"`
	TechStack  domain.TechStack  `json:"tech_stack"`
	Modules    []domain.Module   `json:"modules"`
	APISurface domain.APISurface `json:"api_surface"`
}

// Analyzer computes repository contexts, caching results in a ContextStore
// and deduplicating concurrent computations per repository.
type Analyzer struct {
	cache  store.ContextStore
	host   repohost.Host
	gen    gen.Generator
	clock  clock.Clock
	logger zerolog.Logger
	group  singleflight.Group
}

// New creates an Analyzer. The logger may be nil, in which case a no-op
// logger is used.
func New(cache store.ContextStore, host repohost.Host, generator gen.Generator, clk clock.Clock, logger *zerolog.Logger) *Analyzer {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Analyzer{
		cache:  cache,
		host:   host,
		gen:    generator,
		clock:  clk,
		logger: log,
	}
}

// Analyze returns the repository context for ref, serving from cache when
// available. A cache hit increments the access counter and performs no
// network traffic. A cache miss computes the context and writes it back;
// concurrent misses for the same repository share one computation.
//
// Cache-store failures degrade to a fresh computation rather than failing
// the analysis. Generation or parse failures are fatal and nothing is
// cached.
func (a *Analyzer) Analyze(ctx context.Context, ref domain.RepoRef) (*domain.RepositoryContext, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	key := ref.String()
	if rc, err := a.cache.Get(ctx, key); err == nil {
		if n, terr := a.cache.Touch(ctx, key); terr == nil {
			rc.AccessCount = n
		} else {
			a.logger.Warn().Str("repo", key).Err(terr).Msg("access counter update failed")
		}
		a.logger.Debug().Str("repo", key).Int64("access_count", rc.AccessCount).Msg("context cache hit")
		return rc, nil
	} else if !errors.Is(err, devplanerrors.ErrContextNotFound) {
		a.logger.Warn().Str("repo", key).Err(err).Msg("context cache unavailable, analyzing without cache")
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		return a.compute(ctx, ref)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.RepositoryContext), nil //nolint:forcetypeassert // Only compute results enter the group
}

func (a *Analyzer) compute(ctx context.Context, ref domain.RepoRef) (*domain.RepositoryContext, error) {
	key := ref.String()

	tree, err := a.host.GetTree(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, devplanerrors.Wrapf(err, "fetching tree for %s", key)
	}

	metrics := buildMetrics(tree)
	readme := a.fetchReadme(ctx, ref)
	manifests := a.fetchManifests(ctx, ref, metrics.Manifests)

	prompt := buildAnalysisPrompt(ref, tree, readme, manifests)
	raw, err := a.gen.Generate(ctx, gen.Request{
		Label:       "analysis",
		Prompt:      prompt,
		Temperature: constants.AnalysisTemperature,
		MaxTokens:   constants.AnalysisMaxTokens,
	})
	if err != nil {
		return nil, devplanerrors.Wrapf(err, "analyzing %s", key)
	}

	var resp analysisResponse
	if err = extract.ExtractInto(raw, "analysis", &resp); err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	rc := &domain.RepositoryContext{
		Repo:       ref,
		Summary:    resp.Summary,
		TechStack:  resp.TechStack,
		Modules:    resp.Modules,
		APISurface: resp.APISurface,
		Metrics:    metrics,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rc.TechStack.PrimaryLanguage == "" {
		rc.TechStack.PrimaryLanguage = primaryLanguage(metrics.ExtensionCounts)
	}

	if perr := a.cache.Put(ctx, rc); perr != nil {
		a.logger.Warn().Str("repo", key).Err(perr).Msg("context cache write failed")
	}
	a.logger.Info().
		Str("repo", key).
		Int("file_count", metrics.FileCount).
		Str("primary_language", rc.TechStack.PrimaryLanguage).
		Msg("repository analyzed")
	return rc, nil
}

// fetchReadme returns the truncated README content, or empty when the file
// is absent or unreadable. A missing README is normal.
func (a *Analyzer) fetchReadme(ctx context.Context, ref domain.RepoRef) string {
	for _, name := range []string{"README.md", "README"} {
		data, err := a.host.GetFile(ctx, ref.Owner, ref.Name, name)
		if err == nil {
			if len(data) > constants.MaxReadmeBytes {
				data = data[:constants.MaxReadmeBytes]
			}
			return string(data)
		}
		if !errors.Is(err, devplanerrors.ErrFileNotFound) {
			a.logger.Warn().Str("repo", ref.String()).Str("file", name).Err(err).Msg("readme fetch failed")
			return ""
		}
	}
	return ""
}

// fetchManifests fetches the contents of manifests already known to exist
// in the tree, in lookup-table order, stopping after the fetch cap. A
// failed fetch is skipped.
func (a *Analyzer) fetchManifests(ctx context.Context, ref domain.RepoRef, names []string) map[string]string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	out := make(map[string]string)
	attempts := 0
	for _, name := range manifestFiles {
		if attempts >= constants.MaxManifestFiles {
			break
		}
		if !present[name] {
			continue
		}
		attempts++
		data, err := a.host.GetFile(ctx, ref.Owner, ref.Name, name)
		if err != nil {
			a.logger.Warn().Str("repo", ref.String()).Str("file", name).Err(err).Msg("manifest fetch failed")
			continue
		}
		out[name] = string(data)
	}
	return out
}

// buildMetrics derives raw tree measurements: file count, extension
// histogram, and which known manifests exist at the repository root.
func buildMetrics(tree []string) domain.RepoMetrics {
	known := make(map[string]bool, len(manifestFiles))
	for _, n := range manifestFiles {
		known[n] = true
	}

	counts := make(map[string]int)
	var manifests []string
	for _, path := range tree {
		if known[path] {
			manifests = append(manifests, path)
		}
		if idx := strings.LastIndex(path, "."); idx >= 0 && idx < len(path)-1 {
			counts[path[idx+1:]]++
		}
	}
	return domain.RepoMetrics{
		FileCount:       len(tree),
		Manifests:       manifests,
		ExtensionCounts: counts,
	}
}

// primaryLanguage picks the language with the highest extension count.
// Ties break alphabetically for determinism.
func primaryLanguage(counts map[string]int) string {
	best, bestCount := "", 0
	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		lang, ok := languageByExtension[ext]
		if !ok {
			continue
		}
		if counts[ext] > bestCount {
			best, bestCount = lang, counts[ext]
		}
	}
	return best
}

// buildAnalysisPrompt assembles the analysis prompt from the tree (capped),
// the truncated README, and any fetched manifests.
func buildAnalysisPrompt(ref domain.RepoRef, tree []string, readme string, manifests map[string]string) string {
	paths := tree
	if len(paths) > constants.MaxPromptFilePaths {
		paths = paths[:constants.MaxPromptFilePaths]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the repository %s and respond with a single JSON object.\n\n", ref.String())
	b.WriteString("Required fields:\n")
	b.WriteString(`  "summary": one-paragraph description of what the project does` + "\n")
	b.WriteString(`  "tech_stack": {"primary_language", "secondary_languages", "frameworks", "datastores"}` + "\n")
	b.WriteString(`  "modules": [{"name", "description", "relevant_files"}]` + "\n")
	b.WriteString(`  "api_surface": {"endpoints", "auth_method"}` + "\n\n")

	fmt.Fprintf(&b, "File tree (%d of %d files):\n", len(paths), len(tree))
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	if readme != "" {
		b.WriteString("\nREADME:\n")
		b.WriteString(readme)
		b.WriteByte('\n')
	}

	// Deterministic manifest order keeps prompts reproducible.
	names := make([]string, 0, len(manifests))
	for name := range manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\n%s:\n%s\n", name, manifests[name])
	}

	b.WriteString("\nRespond with JSON only, no surrounding prose.\n")
	return b.String()
}
