package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/analyzer"
	"github.com/devplan/devplan/internal/classify"
	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/config"
	"github.com/devplan/devplan/internal/domain"
	"github.com/devplan/devplan/internal/engine"
	"github.com/devplan/devplan/internal/evidence"
	"github.com/devplan/devplan/internal/gen"
	"github.com/devplan/devplan/internal/plan"
	"github.com/devplan/devplan/internal/repohost"
	"github.com/devplan/devplan/internal/roster"
	"github.com/devplan/devplan/internal/store"
)

// app bundles the wired pipeline for one command invocation.
type app struct {
	cfg      *config.Config
	engine   *engine.Engine
	sessions *store.FileSessionStore
	host     repohost.Host
	logger   zerolog.Logger
	closers  []io.Closer
}

// buildApp loads configuration and wires the full pipeline. Commands that
// only need part of the pipeline still build it all; construction is cheap
// and nothing dials out until used.
func buildApp(ctx context.Context, logger zerolog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildAppWithConfig(ctx, cfg, logger)
}

func buildAppWithConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	home, err := getDevplanHome()
	if err != nil {
		return nil, err
	}
	sessions, err := store.NewFileSessionStore(home)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, sessions: sessions, logger: logger}

	var cache store.ContextStore
	if cfg.Cache.Backend == config.CacheBackendRedis {
		redisStore := store.NewRedisContextStore(store.RedisConfig{
			Addr:   cfg.Cache.RedisAddr,
			Prefix: cfg.Cache.Prefix,
		}, &logger)
		a.closers = append(a.closers, redisStore)
		cache = redisStore
	} else {
		cache = store.NewMemoryContextStore()
	}

	a.host = repohost.NewGitHub(repohost.GitHubConfig{
		BaseURL:       cfg.GitHub.BaseURL,
		Token:         cfg.GitHub.Token,
		Timeout:       cfg.GitHub.Timeout,
		SearchTimeout: cfg.GitHub.SearchTimeout,
	}, nil, &logger)

	generator, err := gen.NewGemini(ctx, gen.Config{
		APIKey:     cfg.Gen.APIKey,
		Model:      cfg.Gen.Model,
		Timeout:    cfg.Gen.Timeout,
		MaxRetries: cfg.Gen.MaxRetries,
	}, &logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	clk := clock.NewRealClock()
	anl := analyzer.New(cache, a.host, generator, clk, &logger)
	classifier := classify.New(generator, evidence.NewSearcher(a.host, &logger), sessions, clk, &logger)
	planner := plan.New(generator, sessions, clk, &logger)
	a.engine = engine.New(anl, classifier, planner, sessions, clk, &logger)
	return a, nil
}

// Close releases backend connections.
func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// loadRoster loads the configured roster. No configured path means
// matching is disabled and an empty roster is returned.
func (a *app) loadRoster() ([]domain.TeamMember, error) {
	if a.cfg.Roster.Path == "" {
		return nil, nil
	}
	return roster.Load(a.cfg.Roster.Path)
}
