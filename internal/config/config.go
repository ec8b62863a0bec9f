package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/discussion-grader/pkg/ai"
)

// Config holds runtime configuration for the grader CLI.
type Config struct {
	BaseDir string
	AI      ai.ProviderConfig
}

// Load reads configuration from an optional JSON config file, an optional
// .env file, and environment variables, in increasing order of precedence.
// The config file is looked up in ./config and ~/.discussion-grader.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("base_dir", "discussions")
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.temperature", 0.0)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath("config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".discussion-grader"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	// Provider credentials are conventionally set without the prefix.
	_ = v.BindEnv("ai.anthropic_api_key", "GRADER_AI_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("ai.openai_api_key", "GRADER_AI_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ai.base_url", "GRADER_AI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("ai.provider", "GRADER_AI_PROVIDER", "AI_PROVIDER")

	cfg := Config{
		BaseDir: v.GetString("base_dir"),
		AI: ai.ProviderConfig{
			Provider:        strings.ToLower(v.GetString("ai.provider")),
			Model:           v.GetString("ai.model"),
			Temperature:     float32(v.GetFloat64("ai.temperature")),
			MaxTokens:       v.GetInt("ai.max_tokens"),
			BaseURL:         v.GetString("ai.base_url"),
			AnthropicAPIKey: v.GetString("ai.anthropic_api_key"),
			OpenAIAPIKey:    v.GetString("ai.openai_api_key"),
		},
	}

	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 4096
	}

	return cfg, nil
}
