package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"

	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

const defaultSystemTemplate = "너는 식약처 기준 의약품 개요서를 작성하는 전문가야. 요청된 항목에 대해서만 답하고, 응답은 반드시 JSON 형식으로 반환해."

// Engine is the Ollama-backed implementation of the completion
// collaborator. One synchronous request per call, bounded by the
// configured timeout and rate limit.
type Engine struct {
	config types.CompleterConfig
	llm    llms.Model
	limit  *rate.Limiter
}

// NewWithConfig creates an Engine with the given configuration.
func NewWithConfig(config types.CompleterConfig) (*Engine, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 512
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 2
	}

	model, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Engine{
		config: config,
		llm:    model,
		limit:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

var _ types.Completer = (*Engine)(nil)

// Complete sends one prompt and returns the model's text. A timeout or
// transport failure surfaces as an error; the reconciler decides what a
// failure means for the record.
func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	if err := e.limit.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, defaultSystemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	response, err := e.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(e.config.MaxTokens),
		llms.WithTemperature(e.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("completion error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}
