package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	cfg    ProviderConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewAnthropicClient builds a new client using the provided configuration. No
// network call happens here.
func NewAnthropicClient(cfg ProviderConfig) (*AnthropicClient, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key is required", ErrMissingCredentials)
	}

	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.AnthropicAPIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/discussion-grader/pkg/ai/anthropic"),
		logger: logger,
	}, nil
}

// Grade sends the grading request to Anthropic and returns the raw reply text.
func (c *AnthropicClient) Grade(parent context.Context, req GradeRequest) (string, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return "", ErrEmptyPrompt
	}

	ctx, span := c.tracer.Start(parent, "anthropic.grade", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		err = classifyAnthropicError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().Err(err).Str("model", c.cfg.Model).Msg("anthropic grading call failed")
		return "", err
	}

	if len(msg.Content) == 0 {
		err := fmt.Errorf("%w: no content blocks returned from anthropic", ErrResponse)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}
	return strings.TrimSpace(text.String()), nil
}

// classifyAnthropicError maps vendor errors onto the shared taxonomy, same
// split as the OpenAI backend.
func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
			return fmt.Errorf("%w: anthropic: %v", ErrConnection, err)
		default:
			return fmt.Errorf("%w: anthropic: %v", ErrResponse, err)
		}
	}

	return fmt.Errorf("%w: anthropic: %v", ErrConnection, err)
}
