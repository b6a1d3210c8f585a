package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	llmclient "symposium/internal/llmClient"
	"symposium/internal/tester"
)

type recordingHook struct {
	before []string
	after  []string
	errs   []error
}

func (h *recordingHook) Before(ctx context.Context, generation, prompt string) {
	h.before = append(h.before, generation+":"+prompt)
}

func (h *recordingHook) After(ctx context.Context, generation, text string, err error) {
	h.after = append(h.after, generation+":"+text)
	h.errs = append(h.errs, err)
}

func TestWithHooksCallsBeforeAndAfter(t *testing.T) {
	hook := &recordingHook{}
	cli := Wrap(&fastClient{}, WithHooks())
	ctx := WithPromptHook(WithGeneration(context.Background(), "gen-1"), hook)

	out, err := cli.GenerateText(ctx, "prompt")
	tester.NoErr(t, err)
	tester.Eq(t, out, "ok")
	tester.Eq(t, hook.before, []string{"gen-1:prompt"})
	tester.Eq(t, hook.after, []string{"gen-1:ok"})
}

func TestWithHooksNoHookIsNoop(t *testing.T) {
	cli := Wrap(&fastClient{}, WithHooks())
	out, err := cli.GenerateText(context.Background(), "p")
	tester.NoErr(t, err)
	tester.Eq(t, out, "ok")
	tester.Eq(t, GenerationFrom(context.Background()), "unknown")
}

func TestWithLoggingRecordsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	failing := llmclient.NewFakeClient(llmclient.FakeStep{Err: errors.New("boom")})
	cli := Wrap(failing, WithLogging(logger))

	_, err := cli.GenerateText(WithGeneration(context.Background(), "g"), "abc")
	if err == nil {
		t.Fatalf("expected error")
	}
	out := buf.String()
	tester.True(t, strings.Contains(out, "LLM request (FakeLLM, g): 3 bytes"), out)
	tester.True(t, strings.Contains(out, "LLM error (FakeLLM, g): boom"), out)
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next llmclient.TextClient) llmclient.TextClient {
			order = append(order, name)
			return next
		}
	}
	Wrap(&fastClient{}, mw("A"), nil, mw("B"))
	// B wraps first so that A ends up outermost.
	tester.Eq(t, order, []string{"B", "A"})
}
