package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements Client against the OpenAI chat completion API. It
// also serves OpenAI-compatible custom endpoints, which differ only in base
// URL.
type OpenAIClient struct {
	client *openai.Client
	cfg    ProviderConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration. No
// network call happens here.
func NewOpenAIClient(cfg ProviderConfig) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", ErrMissingCredentials)
	}

	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/discussion-grader/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// Grade sends the grading request to OpenAI and returns the raw reply text.
func (c *OpenAIClient) Grade(parent context.Context, req GradeRequest) (string, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return "", ErrEmptyPrompt
	}

	ctx, span := c.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	})
	if err != nil {
		err = classifyOpenAIError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().Err(err).Str("model", c.cfg.Model).Msg("openai grading call failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned from openai", ErrResponse)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError maps vendor errors onto the shared taxonomy. Auth and
// transport failures count as connection errors (transient from the caller's
// point of view); every other non-2xx is a response error.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
			return fmt.Errorf("%w: openai: %v", ErrConnection, err)
		default:
			return fmt.Errorf("%w: openai: %v", ErrResponse, err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: openai: %v", ErrConnection, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: openai: %v", ErrConnection, err)
	}

	return fmt.Errorf("%w: openai: %v", ErrConnection, err)
}
