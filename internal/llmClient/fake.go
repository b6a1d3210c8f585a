package llmclient

import (
	"context"
	"strings"
	"sync"
)

// FakeClient replays scripted responses in order, for offline runs and tests.
// Once the script is exhausted the last step repeats.
type FakeClient struct {
	mu    sync.Mutex
	steps []FakeStep
	calls int
}

// FakeStep is one scripted provider answer.
type FakeStep struct {
	Text string
	Err  error
}

func NewFakeClient(steps ...FakeStep) *FakeClient {
	return &FakeClient{steps: steps}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewPermanentError(0, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	if len(f.steps) == 0 {
		return defaultFakeDiscussion(prompt), nil
	}
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	step := f.steps[idx]
	return step.Text, step.Err
}

// Calls reports how many times GenerateText was invoked.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func defaultFakeDiscussion(prompt string) string {
	lines := []string{
		"I would begin by asking what we mean by the question itself.",
		"A fair start, but definitions alone will not settle it.",
		"Then let us test each claim against what we have observed.",
		"Observation is where I would like this conversation to stay.",
	}
	if strings.TrimSpace(prompt) == "" {
		return ""
	}
	return strings.Join(lines, "\n")
}
