// Package gen provides the gateway to the hosted text-generation service.
//
// The service is stateless and unreliable: responses may be empty, truncated,
// or prose instead of JSON. This package only moves prompts and raw text;
// parsing lives in internal/extract, and callers decide whether a failed
// stage is worth re-invoking at the application layer.
package gen

import (
	"context"
	"time"
)

// Request describes one generation call. Temperature and token budget vary
// by pipeline stage, so they travel with the request rather than the config.
type Request struct {
	// Label names the pipeline stage for logging and error reporting
	// (e.g., "type_detection", "clarity", "plan").
	Label string

	// Prompt is the full prompt text.
	Prompt string

	// Temperature is the sampling temperature for this call.
	Temperature float32

	// MaxTokens is the output token budget for this call.
	MaxTokens int32
}

// Generator is the abstraction every pipeline stage calls. Implementations
// return the raw response text; they never attempt to interpret it.
type Generator interface {
	// Generate performs one generation call and returns the raw text.
	Generate(ctx context.Context, req Request) (string, error)
}

// Config holds generation gateway settings.
type Config struct {
	// APIKey authenticates against the generation service.
	APIKey string

	// Model is the model identifier (e.g., "gemini-2.0-flash-exp").
	Model string

	// Timeout bounds a single generation call, retries included
	// individually. Zero means the default.
	Timeout time.Duration

	// MaxRetries bounds transient-failure retries. Zero means the default.
	MaxRetries int
}
