package discussion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	llmclient "symposium/internal/llmClient"
	"symposium/internal/notify"
)

const (
	// MaxRetries is the total number of attempts made for one generation.
	MaxRetries = 3
	// RetryDelay is the fixed pause between attempts.
	RetryDelay = 2 * time.Second
)

// RetryPolicy bounds the attempts of one generation.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: MaxRetries, Delay: RetryDelay}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// Outcome is the result of a single attempt.
type Outcome string

const (
	OutcomePending          Outcome = "pending"
	OutcomeSuccess          Outcome = "success"
	OutcomeRetryableFailure Outcome = "retryable-failure"
	OutcomeFatalFailure     Outcome = "fatal-failure"
)

// Attempt records one call to the generation service. Number starts at 0.
type Attempt struct {
	Number  int     `json:"number"`
	Outcome Outcome `json:"outcome"`
}

// SleepFunc suspends the calling goroutine for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generator calls the text generation service with bounded fixed-delay retry.
// Only overload-class failures are retried; anything else ends the run at once.
type Generator struct {
	client llmclient.TextClient
	policy RetryPolicy
	sink   notify.Sink
	sleep  SleepFunc
	logger *log.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSleep replaces the delay primitive, mainly for tests.
func WithSleep(fn SleepFunc) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.sleep = fn
		}
	}
}

// WithGeneratorLogger sets the logger used for attempt failures.
func WithGeneratorLogger(l *log.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGenerator(client llmclient.TextClient, policy RetryPolicy, sink notify.Sink, opts ...GeneratorOption) *Generator {
	if sink == nil {
		sink = notify.Discard
	}
	g := &Generator{
		client: client,
		policy: policy.normalized(),
		sink:   sink,
		sleep:  sleepContext,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the effective retry policy.
func (g *Generator) Policy() RetryPolicy { return g.policy }

// Generate returns the generated text. observe, if non-nil, is called when an
// attempt starts (OutcomePending) and when it resolves.
//
// Failures are returned as *GenerationError. Text that is empty after
// trimming yields a GenerationError with ReasonEmptyResult.
func (g *Generator) Generate(ctx context.Context, prompt string, observe func(Attempt)) (string, error) {
	if observe == nil {
		observe = func(Attempt) {}
	}
	span := trace.SpanFromContext(ctx)

	var lastErr error
	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			g.sink.Notify(retryNotification(attempt, g.policy.MaxAttempts))
			if err := g.sleep(ctx, g.policy.Delay); err != nil {
				return "", &GenerationError{Reason: ReasonCanceled, Attempts: attempt, Err: err}
			}
		}
		observe(Attempt{Number: attempt, Outcome: OutcomePending})
		span.AddEvent("attempt", trace.WithAttributes(attribute.Int("discussion.attempt", attempt)))

		text, err := g.client.GenerateText(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				observe(Attempt{Number: attempt, Outcome: OutcomeFatalFailure})
				return "", &GenerationError{Reason: ReasonEmptyResult, Attempts: attempt + 1, Err: ErrEmptyResult}
			}
			observe(Attempt{Number: attempt, Outcome: OutcomeSuccess})
			return text, nil
		}

		if !llmclient.IsRetryable(err) {
			observe(Attempt{Number: attempt, Outcome: OutcomeFatalFailure})
			reason := ReasonService
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				reason = ReasonCanceled
			}
			g.logger.Printf("generation attempt %d failed (fatal): %v", attempt, err)
			return "", &GenerationError{Reason: reason, Attempts: attempt + 1, Err: err}
		}
		observe(Attempt{Number: attempt, Outcome: OutcomeRetryableFailure})
		g.logger.Printf("generation attempt %d failed (retryable): %v", attempt, err)
		lastErr = err
	}
	return "", &GenerationError{Reason: ReasonOverloaded, Attempts: g.policy.MaxAttempts, Err: lastErr}
}

// FailureReason classifies why a generation ended without a transcript.
type FailureReason string

const (
	ReasonOverloaded  FailureReason = "overloaded"
	ReasonService     FailureReason = "service_error"
	ReasonEmptyResult FailureReason = "empty_result"
	ReasonCanceled    FailureReason = "canceled"
	ReasonInternal    FailureReason = "internal"
)

var (
	ErrEmptyResult = errors.New("generation service returned no text")
	ErrBusy        = errors.New("a discussion is already being generated")
)

// GenerationError is returned for every failed generation.
type GenerationError struct {
	Reason   FailureReason
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s) after %d attempt(s): %v", e.Reason, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ReasonOf extracts the failure reason of err, or ReasonInternal.
func ReasonOf(err error) FailureReason {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return ReasonInternal
}
