package llm

import (
	"context"

	llmclient "symposium/internal/llmClient"
)

// PromptHook defines callbacks around LLM requests.
type PromptHook interface {
	Before(ctx context.Context, generation, prompt string)
	After(ctx context.Context, generation, text string, err error)
}

type ctxKeyHook struct{}
type ctxKeyGeneration struct{}

// WithGeneration attaches a generation id to the context.
func WithGeneration(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyGeneration{}, id)
}

// WithPromptHook attaches a PromptHook to the context. The WithHooks
// middleware invokes Before/After around requests.
func WithPromptHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(PromptHook); ok {
			return h
		}
	}
	return nil
}

// GenerationFrom returns the generation id stored in the context.
func GenerationFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyGeneration{}); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

// WithHooks calls HookFrom(ctx).Before/After around GenerateText.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next llmclient.TextClient) llmclient.TextClient {
		return &hooked{next: next}
	}
}

type hooked struct{ next llmclient.TextClient }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) GenerateText(ctx context.Context, prompt string) (string, error) {
	hook := HookFrom(ctx)
	if hook != nil {
		hook.Before(ctx, GenerationFrom(ctx), prompt)
	}
	out, err := h.next.GenerateText(ctx, prompt)
	if hook != nil {
		hook.After(ctx, GenerationFrom(ctx), out, err)
	}
	return out, err
}
