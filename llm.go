package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ServiceError is a classified upstream failure. Transient covers service
// unavailable, overloaded, rate limited, and transport-level errors; auth,
// bad request, and malformed response envelopes are fatal and never retried.
type ServiceError struct {
	Status    int // 0 when no HTTP status applies (transport error, bad envelope)
	Msg       string
	Transient bool
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("classification service: status %d: %s", e.Status, e.Msg)
	}
	return "classification service: " + e.Msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable upstream failure.
func IsTransient(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Transient
}

// classifyAPIError maps an Anthropic SDK error to a ServiceError. Statuses
// that signal a condition expected to clear on its own (503 unavailable,
// 529 overloaded, 429 rate limited) are transient; transport errors with no
// status at all are treated the same way. Every other status is fatal.
func classifyAPIError(err error) *ServiceError {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		transient := apierr.StatusCode == 503 || apierr.StatusCode == 529 || apierr.StatusCode == 429
		return &ServiceError{Status: apierr.StatusCode, Msg: err.Error(), Transient: transient, Err: err}
	}
	return &ServiceError{Msg: err.Error(), Transient: true, Err: err}
}

// Classifier performs one prompt/response exchange with the model service.
type Classifier interface {
	Classify(ctx context.Context, systemPrompt, userPrompt string) (string, LLMUsage, error)
}

// AnthropicClassifier calls the Anthropic Messages API.
type AnthropicClassifier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropicClassifier(apiKey, model string, maxTokens int) *AnthropicClassifier {
	return &AnthropicClassifier{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (a *AnthropicClassifier) Classify(ctx context.Context, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, classifyAPIError(err)
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, &ServiceError{Msg: "no text content in Anthropic response"}
}

// RetryingClassifier wraps a Classifier with bounded retry on transient
// failures. Backoff doubles each attempt starting at Unit (1,2,4 units for
// the default 3 attempts). Fatal errors propagate immediately; after the
// attempt budget is spent the last transient error propagates.
type RetryingClassifier struct {
	Inner       Classifier
	MaxAttempts int
	Unit        time.Duration
	Sleep       func(time.Duration) // nil means time.Sleep
}

func NewRetryingClassifier(inner Classifier, maxAttempts int) *RetryingClassifier {
	return &RetryingClassifier{Inner: inner, MaxAttempts: maxAttempts, Unit: time.Second}
}

func (r *RetryingClassifier) Classify(ctx context.Context, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	backoff := r.Unit
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		text, usage, err := r.Inner.Classify(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, usage, nil
		}
		if !IsTransient(err) {
			return "", usage, err
		}
		lastErr = err
		if attempt < r.MaxAttempts {
			log.Printf("llm transient failure attempt=%d/%d backoff=%s err=%v", attempt, r.MaxAttempts, backoff, err)
			sleep(backoff)
			backoff *= 2
		}
	}
	return "", LLMUsage{}, lastErr
}
