package llm

import (
	"context"
	"log"
	"os"
	"strconv"

	llmclient "symposium/internal/llmClient"
)

// Middleware decorates a TextClient to inject cross-cutting concerns
// (rate limiting, logging, hooks).
type Middleware func(llmclient.TextClient) llmclient.TextClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.TextClient, mws ...Middleware) llmclient.TextClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit spaces requests to rps per second after a burst of burst
// requests. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.TextClient) llmclient.TextClient {
		return &rateLimited{next: next, rl: newBucket(rps, burst)}
	}
}

// RateLimitFromEnv reads RPS/BURST from environment variables with the
// given prefixes in priority order. For example, ("LLM","GEMINI")
// checks LLM_RPS/LLM_BURST first, then GEMINI_RPS/GEMINI_BURST.
func RateLimitFromEnv(prefixes ...string) Middleware {
	find := func(suffix string) string {
		for _, p := range prefixes {
			if p == "" {
				continue
			}
			if v := os.Getenv(p + suffix); v != "" {
				return v
			}
		}
		return ""
	}
	rps, _ := strconv.ParseFloat(find("_RPS"), 64)
	burst, _ := strconv.Atoi(find("_BURST"))
	return RateLimit(rps, burst)
}

type rateLimited struct {
	next llmclient.TextClient
	rl   *bucket
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.close()
	return c.next.Close()
}
func (c *rateLimited) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.rl.wait(ctx); err != nil {
		return "", llmclient.NewPermanentError(0, err)
	}
	return c.next.GenerateText(ctx, prompt)
}

// -------- Logging --------

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.TextClient) llmclient.TextClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.TextClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	l.log.Printf("LLM request (%s, %s): %d bytes", l.next.Name(), GenerationFrom(ctx), len(prompt))
	out, err := l.next.GenerateText(ctx, prompt)
	if err != nil {
		l.log.Printf("LLM error (%s, %s): %v", l.next.Name(), GenerationFrom(ctx), err)
		return out, err
	}
	l.log.Printf("LLM response (%s, %s): %d bytes", l.next.Name(), GenerationFrom(ctx), len(out))
	return out, nil
}
