package discussion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"symposium/internal/llm"
	llmclient "symposium/internal/llmClient"
	"symposium/internal/roster"
	"symposium/internal/selection"
	"symposium/internal/tester"
)

// gateClient blocks every call until release is closed.
type gateClient struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	text    string

	mu    sync.Mutex
	calls int
}

func newGateClient(text string) *gateClient {
	return &gateClient{entered: make(chan struct{}), release: make(chan struct{}), text: text}
}

func (g *gateClient) Name() string { return "gate" }
func (g *gateClient) Close() error { return nil }
func (g *gateClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return g.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gateClient) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type panicClient struct{}

func (panicClient) Name() string { return "panic" }
func (panicClient) Close() error { return nil }
func (panicClient) GenerateText(context.Context, string) (string, error) {
	panic("boom")
}

func newTestOrchestrator(t *testing.T, client llmclient.TextClient, sink *sinkRecorder, rec *sleepRecorder) *Orchestrator {
	t.Helper()
	o, err := New(Config{
		Client:           client,
		Sink:             sink,
		Logger:           quietLogger(),
		GeneratorOptions: []GeneratorOption{WithSleep(rec.sleep)},
	})
	tester.NoErr(t, err)
	return o
}

func choose(t *testing.T, o *Orchestrator, names ...string) []roster.Participant {
	t.Helper()
	r := roster.Default()
	var out []roster.Participant
	for _, n := range names {
		p, ok := r.Lookup(n)
		tester.True(t, ok, "unknown participant %q", n)
		_, err := o.ToggleParticipant(p)
		tester.NoErr(t, err)
		out = append(out, p)
	}
	return out
}

func waitDone(t *testing.T, o *Orchestrator) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := o.Wait(ctx)
	tester.NoErr(t, err)
	return st
}

func TestGenerateSucceedsAndAssignsTurns(t *testing.T) {
	client := llmclient.NewFakeClient(llmclient.FakeStep{Text: "line1\n\nline2\nline3"})
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, client, sink, &sleepRecorder{})
	ps := choose(t, o, "Socrates", "Ada Lovelace", "Marie Curie")
	o.SetTopic("Ethics of AI")

	st, err := o.Generate(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, st.Status, StatusSucceeded)
	tester.Eq(t, len(st.Transcript), 3)
	for i, turn := range st.Transcript {
		tester.Eq(t, turn.Speaker.ID, ps[i].ID)
	}
	tester.Eq(t, st.Transcript[1].Text, "line2")
	tester.Eq(t, sink.Titles(), []string{"Discussion ready"})
	tester.False(t, st.Busy())
}

func TestGenerateRejectsInvalidSelection(t *testing.T) {
	client := llmclient.NewFakeClient()
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, client, sink, &sleepRecorder{})
	choose(t, o, "Socrates")
	o.SetTopic("Justice")

	_, err := o.Start(context.Background())
	tester.ErrIs(t, err, selection.ErrTooFewParticipants)
	tester.Eq(t, client.Calls(), 0)
	tester.Eq(t, o.State().Status, StatusIdle)
	tester.Eq(t, sink.Titles(), []string{"Select more participants"})

	choose(t, o, "Ada Lovelace")
	o.SetTopic("  ")
	_, err = o.Start(context.Background())
	tester.ErrIs(t, err, selection.ErrNoTopic)
	tester.Eq(t, client.Calls(), 0)
}

func TestGenerateRequiresModeratorWhenConfigured(t *testing.T) {
	client := llmclient.NewFakeClient()
	o, err := New(Config{Client: client, RequireModerator: true, Logger: quietLogger()})
	tester.NoErr(t, err)
	ps := choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	_, err = o.Start(context.Background())
	tester.ErrIs(t, err, selection.ErrNoModerator)

	tester.NoErr(t, o.SetModerator(ps[0]))
	st, err := o.Generate(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, st.Status, StatusSucceeded)
}

func TestSecondStartWhileInFlightIsBusy(t *testing.T) {
	client := newGateClient("a\nb")
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, client, sink, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	id, err := o.Start(context.Background())
	tester.NoErr(t, err)
	<-client.entered
	tester.Eq(t, o.State().Status, StatusInFlight)

	_, err = o.Start(context.Background())
	tester.ErrIs(t, err, ErrBusy)
	tester.Eq(t, sink.Titles(), []string{"Discussion in progress"})

	close(client.release)
	st := waitDone(t, o)
	tester.Eq(t, st.GenerationID, id)
	tester.Eq(t, st.Status, StatusSucceeded)
	tester.Eq(t, client.Calls(), 1, "rejected start must not reach the service")
}

func TestSelectionEditsDoNotAffectRunningGeneration(t *testing.T) {
	client := newGateClient("a\nb\nc\nd")
	o := newTestOrchestrator(t, client, &sinkRecorder{}, &sleepRecorder{})
	ps := choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	_, err := o.Start(context.Background())
	tester.NoErr(t, err)
	<-client.entered
	choose(t, o, "Marie Curie")
	close(client.release)

	st := waitDone(t, o)
	tester.Eq(t, len(st.Transcript), 4)
	tester.Eq(t, st.Transcript[2].Speaker.ID, ps[0].ID)
	tester.Eq(t, st.Transcript[3].Speaker.ID, ps[1].ID)
}

func TestOverloadFailureKeepsPreviousTranscript(t *testing.T) {
	client := llmclient.NewFakeClient(
		llmclient.FakeStep{Text: "first\nsecond"},
		llmclient.FakeStep{Err: errOverloaded},
	)
	sink := &sinkRecorder{}
	rec := &sleepRecorder{}
	o := newTestOrchestrator(t, client, sink, rec)
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	first, err := o.Generate(context.Background())
	tester.NoErr(t, err)

	st, err := o.Generate(context.Background())
	var ge *GenerationError
	tester.True(t, errors.As(err, &ge))
	tester.Eq(t, ge.Reason, ReasonOverloaded)
	tester.Eq(t, st.Status, StatusFailed)
	tester.Eq(t, st.Reason, ReasonOverloaded)
	tester.Eq(t, st.Transcript, first.Transcript)
	tester.Eq(t, len(st.Attempts), MaxRetries)
	tester.Eq(t, client.Calls(), 1+MaxRetries)
	tester.Eq(t, len(rec.Delays()), MaxRetries-1)
	tester.Eq(t, sink.Last().Title, "Service overloaded")
}

func TestFatalFailureEmitsGenericNotice(t *testing.T) {
	client := llmclient.NewFakeClient(llmclient.FakeStep{Err: errBadKey})
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, client, sink, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	st, err := o.Generate(context.Background())
	tester.Eq(t, ReasonOf(err), ReasonService)
	tester.Eq(t, st.Status, StatusFailed)
	tester.Eq(t, len(st.Transcript), 0)
	tester.Eq(t, sink.Titles(), []string{"Generation failed"})
	tester.Eq(t, client.Calls(), 1)
}

func TestEmptyResultFailsWithWarning(t *testing.T) {
	client := llmclient.NewFakeClient(llmclient.FakeStep{Text: "\n\n"})
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, client, sink, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	st, err := o.Generate(context.Background())
	tester.ErrIs(t, err, ErrEmptyResult)
	tester.Eq(t, st.Reason, ReasonEmptyResult)
	tester.Eq(t, st.Attempts, []Attempt{{Number: 0, Outcome: OutcomeFatalFailure}})
	tester.Eq(t, sink.Titles(), []string{"No discussion generated"})
}

func TestUsageCountsHookedRequests(t *testing.T) {
	fake := llmclient.NewFakeClient(
		llmclient.FakeStep{Err: errOverloaded},
		llmclient.FakeStep{Text: "one\ntwo"},
	)
	o := newTestOrchestrator(t, llm.Wrap(fake, llm.WithHooks()), &sinkRecorder{}, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	st, err := o.Generate(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, st.Usage.Requests, 2)
	tester.Eq(t, st.Usage.Failures, 1)
	tester.Eq(t, st.Usage.ResponseBytes, len("one\ntwo"))
	tester.True(t, st.Usage.PromptBytes > 0, "prompt size should be recorded")

	fake2 := llmclient.NewFakeClient(llmclient.FakeStep{Text: "x\ny"})
	o2 := newTestOrchestrator(t, fake2, &sinkRecorder{}, &sleepRecorder{})
	choose(t, o2, "Socrates", "Ada Lovelace")
	o2.SetTopic("Justice")
	st, err = o2.Generate(context.Background())
	tester.NoErr(t, err)
	tester.Eq(t, st.Usage, Usage{})
}

func TestPanickingClientStillClearsInFlight(t *testing.T) {
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, panicClient{}, sink, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	st, err := o.Generate(context.Background())
	tester.Eq(t, ReasonOf(err), ReasonInternal)
	tester.Eq(t, st.Status, StatusFailed)
	tester.False(t, st.Busy())

	_, err = o.Start(context.Background())
	tester.True(t, !errors.Is(err, ErrBusy), "orchestrator must accept a new generation")
	waitDone(t, o)
}

func TestSubscribeSeesTransitions(t *testing.T) {
	client := newGateClient("a\nb")
	o := newTestOrchestrator(t, client, &sinkRecorder{}, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace")
	o.SetTopic("Justice")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub := o.Subscribe(ctx)

	first := <-sub
	tester.Eq(t, first.Status, StatusIdle)

	_, err := o.Start(context.Background())
	tester.NoErr(t, err)
	<-client.entered
	close(client.release)

	seen := map[Status]bool{}
	for st := range sub {
		seen[st.Status] = true
		if st.Status == StatusSucceeded {
			break
		}
	}
	tester.True(t, seen[StatusSucceeded], "never saw success: %v", seen)
}

func TestToggleFullSelectionNotifies(t *testing.T) {
	sink := &sinkRecorder{}
	o := newTestOrchestrator(t, llmclient.NewFakeClient(), sink, &sleepRecorder{})
	choose(t, o, "Socrates", "Ada Lovelace", "Marie Curie", "Confucius")

	p, _ := roster.Default().Lookup("Hypatia")
	_, err := o.ToggleParticipant(p)
	tester.ErrIs(t, err, selection.ErrSelectionFull)
	tester.Eq(t, sink.Titles(), []string{"Selection full"})
	tester.Eq(t, len(o.Selection().Snapshot().Participants), 4)
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	tester.True(t, err != nil, "expected error without client")
}

func TestStatusTextRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusIdle, StatusInFlight, StatusSucceeded, StatusFailed} {
		b, err := s.MarshalText()
		tester.NoErr(t, err)
		var got Status
		tester.NoErr(t, got.UnmarshalText(b))
		tester.Eq(t, got, s)
	}
	var bad Status
	tester.True(t, bad.UnmarshalText([]byte("weird")) != nil)
}
