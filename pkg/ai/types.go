package ai

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Sentinel errors shared by every provider backend so upstream code never
// needs to branch on vendor identity.
var (
	// ErrMissingCredentials means the selected provider has no usable API key.
	// Raised before any network call is made.
	ErrMissingCredentials = errors.New("no usable api credential for provider")

	// ErrUnknownProvider means the configured provider name is not supported.
	ErrUnknownProvider = errors.New("unsupported ai provider")

	// ErrConnection covers network, timeout, and auth failures. Transient;
	// the caller may retry with backoff.
	ErrConnection = errors.New("provider connection failed")

	// ErrResponse covers non-2xx responses and malformed envelopes. Retrying
	// without modifying the request will not help.
	ErrResponse = errors.New("provider returned an unusable response")

	// ErrParse means the model output yielded no usable score after every
	// fallback strategy.
	ErrParse = errors.New("could not extract a grade from the model output")

	// ErrEmptyPrompt rejects grading calls with an empty user prompt.
	ErrEmptyPrompt = errors.New("user prompt must not be empty")
)

// Provider names accepted in configuration. OpenAI-compatible custom
// endpoints use ProviderOpenAI with a base URL override.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ProviderConfig selects and parameterizes an AI backend. Resolved once per
// process from the configuration file merged with environment overrides.
type ProviderConfig struct {
	Provider        string
	Model           string
	Temperature     float32
	MaxTokens       int
	BaseURL         string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	Logger          zerolog.Logger
}

// GradeRequest carries the prompts and sampling parameters for one grading
// call. Out-of-range numeric values are passed through to the provider; any
// provider-side rejection surfaces as ErrResponse.
type GradeRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// Client abstracts a single AI vendor behind a normalized grading call
// returning the raw text of the model reply. Implementations perform no
// retries; the network call is the sole blocking point.
type Client interface {
	Grade(ctx context.Context, req GradeRequest) (string, error)
}
