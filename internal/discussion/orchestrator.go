package discussion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"symposium/internal/llm"
	llmclient "symposium/internal/llmClient"
	"symposium/internal/notify"
	"symposium/internal/prompt"
	"symposium/internal/roster"
	"symposium/internal/selection"
	"symposium/internal/transcript"
)

// Config wires an Orchestrator.
type Config struct {
	Client           llmclient.TextClient
	Sink             notify.Sink
	Policy           RetryPolicy
	RequireModerator bool
	Logger           *log.Logger
	// BaseContext is the parent of every generation run. Runs are detached
	// from the caller's context and stop only when BaseContext is done.
	BaseContext context.Context
	// GeneratorOptions are passed to the underlying Generator.
	GeneratorOptions []GeneratorOption
}

// Orchestrator owns the selection of one discussion session and drives the
// generation state machine: Idle -> InFlight -> Succeeded | Failed. At most
// one generation is in flight at a time.
type Orchestrator struct {
	sel    *selection.State
	gen    *Generator
	sink   notify.Sink
	logger *log.Logger
	base   context.Context

	runs metric.Int64Counter

	mu      sync.Mutex
	state   State
	lastErr error
	changed chan struct{}
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Client == nil {
		return nil, errors.New("discussion: text client is required")
	}
	if cfg.Sink == nil {
		cfg.Sink = notify.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Policy == (RetryPolicy{}) {
		cfg.Policy = DefaultRetryPolicy()
	}
	opts := append([]GeneratorOption{WithGeneratorLogger(cfg.Logger)}, cfg.GeneratorOptions...)
	runs, err := meter.Int64Counter("discussion.generations",
		metric.WithDescription("Finished discussion generations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("discussion: counter: %w", err)
	}
	return &Orchestrator{
		sel:     selection.New(selection.WithRequiredModerator(cfg.RequireModerator)),
		gen:     NewGenerator(cfg.Client, cfg.Policy, cfg.Sink, opts...),
		sink:    cfg.Sink,
		logger:  cfg.Logger,
		base:    cfg.BaseContext,
		runs:    runs,
		state:   State{Status: StatusIdle, Transcript: transcript.Transcript{}, UpdatedAt: time.Now()},
		changed: make(chan struct{}),
	}, nil
}

// Selection exposes the selection state for read access.
func (o *Orchestrator) Selection() *selection.State { return o.sel }

// ToggleParticipant adds or removes p. A full selection emits a warning.
func (o *Orchestrator) ToggleParticipant(p roster.Participant) (bool, error) {
	selected, err := o.sel.Toggle(p)
	if errors.Is(err, selection.ErrSelectionFull) {
		o.sink.Notify(validationNotification(err))
	}
	return selected, err
}

func (o *Orchestrator) SetModerator(p roster.Participant) error { return o.sel.SetModerator(p) }

func (o *Orchestrator) ClearModerator() { o.sel.ClearModerator() }

func (o *Orchestrator) SetTopic(topic string) { o.sel.SetTopic(topic) }

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Start validates the selection and launches a generation in the background.
// It returns the generation id, ErrBusy while another generation is in
// flight, or the selection validation error. The selection is captured here;
// later edits do not affect the running generation.
func (o *Orchestrator) Start(ctx context.Context) (string, error) {
	id, _, err := o.start(ctx)
	return id, err
}

// Generate runs a generation and waits for it to finish.
func (o *Orchestrator) Generate(ctx context.Context) (State, error) {
	id, done, err := o.start(ctx)
	if err != nil {
		return o.State(), err
	}
	select {
	case <-done:
	case <-ctx.Done():
		return o.State(), ctx.Err()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.state.clone()
	if st.GenerationID == id && st.Status == StatusFailed {
		return st, o.lastErr
	}
	return st, nil
}

func (o *Orchestrator) start(ctx context.Context) (string, <-chan struct{}, error) {
	o.mu.Lock()
	if o.state.Status == StatusInFlight {
		o.mu.Unlock()
		o.sink.Notify(busyNotification())
		return "", nil, ErrBusy
	}
	snap, err := o.sel.Validate()
	if err != nil {
		o.mu.Unlock()
		o.sink.Notify(validationNotification(err))
		return "", nil, err
	}
	id := uuid.NewString()
	o.state.GenerationID = id
	o.state.Status = StatusInFlight
	o.state.Attempt = 0
	o.state.Attempts = nil
	o.state.Reason = ""
	o.state.Error = ""
	o.state.Usage = Usage{}
	o.lastErr = nil
	o.bumpLocked()
	o.mu.Unlock()

	// Keep trace linkage with the request but not its cancellation.
	runCtx := trace.ContextWithSpanContext(o.base, trace.SpanContextFromContext(ctx))
	done := make(chan struct{})
	go o.run(runCtx, id, snap, done)
	return id, done, nil
}

func (o *Orchestrator) run(ctx context.Context, id string, snap selection.Snapshot, done chan<- struct{}) {
	defer close(done)

	ctx = llm.WithPromptHook(llm.WithGeneration(ctx, id), usageHook{o: o})
	ctx, span := tracer.Start(ctx, "generate discussion", trace.WithAttributes(
		attribute.String("discussion.generation_id", id),
		attribute.String("discussion.topic", snap.Topic),
		attribute.Int("discussion.participants", len(snap.Participants)),
	))
	defer span.End()

	var (
		result transcript.Transcript
		err    error
	)
	defer func() {
		if r := recover(); r != nil {
			err = &GenerationError{Reason: ReasonInternal, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		o.finish(ctx, id, result, err)
	}()

	text, err := o.gen.Generate(ctx, prompt.Build(snap), func(a Attempt) { o.observe(id, a) })
	if err != nil {
		return
	}
	result = transcript.Assign(text, snap.Participants)
}

func (o *Orchestrator) observe(id string, a Attempt) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.GenerationID != id {
		return
	}
	o.state.Attempt = a.Number
	if a.Outcome == OutcomePending {
		o.state.Attempts = append(o.state.Attempts, a)
	} else if n := len(o.state.Attempts); n > 0 && o.state.Attempts[n-1].Number == a.Number {
		o.state.Attempts[n-1] = a
	}
	o.bumpLocked()
}

// usageHook feeds provider round trips into State.Usage.
type usageHook struct{ o *Orchestrator }

func (h usageHook) Before(_ context.Context, generation, prompt string) {
	h.o.recordUsage(generation, func(u *Usage) {
		u.Requests++
		u.PromptBytes += len(prompt)
	})
}

func (h usageHook) After(_ context.Context, generation, text string, err error) {
	h.o.recordUsage(generation, func(u *Usage) {
		if err != nil {
			u.Failures++
			return
		}
		u.ResponseBytes += len(text)
	})
}

func (o *Orchestrator) recordUsage(id string, update func(*Usage)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.GenerationID != id || o.state.Status != StatusInFlight {
		return
	}
	update(&o.state.Usage)
}

// finish is the single exit of a run and clears the in-flight status.
func (o *Orchestrator) finish(ctx context.Context, id string, result transcript.Transcript, err error) {
	o.mu.Lock()
	if o.state.GenerationID != id || o.state.Status != StatusInFlight {
		o.mu.Unlock()
		return
	}
	var n notify.Notification
	outcome := "succeeded"
	if err != nil {
		reason := ReasonOf(err)
		o.state.Status = StatusFailed
		o.state.Reason = reason
		o.state.Error = err.Error()
		o.lastErr = err
		n = failureNotification(reason)
		outcome = string(reason)
		o.logger.Printf("discussion %s failed: %v", id, err)
	} else {
		o.state.Status = StatusSucceeded
		o.state.Transcript = result.Clone()
		n = successNotification(len(result))
		o.logger.Printf("discussion %s ready: %d turns", id, len(result))
	}
	o.bumpLocked()
	o.mu.Unlock()

	o.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	o.sink.Notify(n)
}

func (o *Orchestrator) bumpLocked() {
	o.state.Version++
	o.state.UpdatedAt = time.Now()
	close(o.changed)
	o.changed = make(chan struct{})
}

// Subscribe emits the current state and every later change until ctx is
// canceled. Slow readers only miss intermediate states.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan State {
	out := make(chan State, 8)
	go func() {
		defer close(out)
		var last uint64
		first := true
		for {
			o.mu.Lock()
			st := o.state.clone()
			ch := o.changed
			o.mu.Unlock()

			if first || st.Version != last {
				pushState(out, st)
				last = st.Version
				first = false
			}
			select {
			case <-ctx.Done():
				return
			case <-ch:
			}
		}
	}()
	return out
}

// Wait blocks until no generation is in flight or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) (State, error) {
	for {
		o.mu.Lock()
		st := o.state.clone()
		ch := o.changed
		o.mu.Unlock()
		if !st.Busy() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ch:
		}
	}
}

func pushState(out chan State, st State) {
	select {
	case out <- st:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- st:
	default:
	}
}
