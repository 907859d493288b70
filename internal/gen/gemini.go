package gen

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/errors"
)

// GeminiGenerator implements Generator on Google's genai SDK.
type GeminiGenerator struct {
	cfg    Config
	client *genai.Client
	logger zerolog.Logger

	// invoke performs the actual SDK call. Overridable in tests.
	invoke func(ctx context.Context, model, prompt string, gcfg *genai.GenerateContentConfig) (string, error)
}

// Ensure GeminiGenerator implements Generator.
var _ Generator = (*GeminiGenerator)(nil)

// NewGemini creates a GeminiGenerator. The logger may be nil, in which case
// a no-op logger is used. Returns ErrMissingAPIKey when no key is configured.
func NewGemini(ctx context.Context, cfg Config, logger *zerolog.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultGenTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = constants.MaxRetryAttempts
	}

	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}

	g := &GeminiGenerator{cfg: cfg, client: client, logger: log}
	g.invoke = g.callModel
	return g, nil
}

// Generate performs one generation call with a bounded timeout and a small
// retry budget for transient transport failures. Semantic failures (auth,
// canceled context) are never retried: a repeated call will not produce a
// different result.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	gcfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}

	backoff := constants.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		text, err := g.invoke(callCtx, g.cfg.Model, req.Prompt, gcfg)
		cancel()

		if err == nil && text != "" {
			g.logger.Debug().
				Str("stage", req.Label).
				Int("attempt", attempt).
				Int("response_len", len(text)).
				Msg("generation call succeeded")
			return text, nil
		}

		if err == nil {
			err = errors.Wrapf(errors.ErrUpstreamUnavailable, "empty response at stage %s", req.Label)
		}
		lastErr = err

		if !isRetryable(err) {
			return "", errors.Wrapf(err, "generation stage %s", req.Label)
		}

		g.logger.Warn().
			Str("stage", req.Label).
			Int("attempt", attempt).
			Err(err).
			Msg("transient generation failure")

		if attempt == g.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeSleep(backoff):
		}
		backoff *= constants.BackoffMultiplier
	}

	return "", errors.Wrapf(errors.ErrMaxRetriesExceeded, "generation stage %s: %v", req.Label, lastErr)
}

// callModel performs the real SDK call.
func (g *GeminiGenerator) callModel(ctx context.Context, model, prompt string, gcfg *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, gcfg)
	if err != nil {
		return "", errors.Wrap(err, "generate content")
	}
	return resp.Text(), nil
}
