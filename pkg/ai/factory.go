package ai

import "fmt"

// NewClient resolves a ProviderConfig into a concrete backend. An explicit
// provider name wins; otherwise the first usable credential decides, with
// Anthropic preferred. Every construction failure surfaces through the shared
// sentinels so callers can react without vendor knowledge.
func NewClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case "":
		// Fall through to credential-based selection.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.AnthropicAPIKey != "" {
		return NewAnthropicClient(cfg)
	}
	if cfg.OpenAIAPIKey != "" {
		return NewOpenAIClient(cfg)
	}

	// No credential anywhere; report it in terms of the default provider.
	return NewAnthropicClient(cfg)
}
