// Package session keeps the live discussion sessions of the gateway.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"symposium/internal/discussion"
	"symposium/internal/notify"
)

var ErrNotFound = errors.New("session not found")

// Session is one user's selection and generation state.
type Session struct {
	ID           string
	Orchestrator *discussion.Orchestrator
	Events       *notify.Broadcaster
	CreatedAt    time.Time

	cancel context.CancelFunc
}

// Factory builds the orchestrator of a new session. ctx is canceled when the
// session is evicted; generations started in the session run under it.
type Factory func(ctx context.Context, sink notify.Sink) (*discussion.Orchestrator, error)

// Registry holds at most capacity sessions and evicts the least recently used.
type Registry struct {
	base     context.Context
	factory  Factory
	sink     notify.Sink
	sessions *lru.Cache[string, *Session]
}

// NewRegistry creates a registry. sink, if non-nil, receives the notifications
// of every session in addition to the session's own broadcaster.
func NewRegistry(base context.Context, capacity int, factory Factory, sink notify.Sink) (*Registry, error) {
	if factory == nil {
		return nil, errors.New("session factory is required")
	}
	if capacity <= 0 {
		capacity = 256
	}
	if base == nil {
		base = context.Background()
	}
	cache, err := lru.NewWithEvict[string, *Session](capacity, func(_ string, s *Session) {
		if s != nil && s.cancel != nil {
			s.cancel()
		}
	})
	if err != nil {
		return nil, err
	}
	return &Registry{base: base, factory: factory, sink: sink, sessions: cache}, nil
}

func (r *Registry) Create() (*Session, error) {
	ctx, cancel := context.WithCancel(r.base)
	events := notify.NewBroadcaster()
	orch, err := r.factory(ctx, notify.Multi(events, r.sink))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create session: %w", err)
	}
	s := &Session{
		ID:           uuid.NewString(),
		Orchestrator: orch,
		Events:       events,
		CreatedAt:    time.Now(),
		cancel:       cancel,
	}
	r.sessions.Add(s.ID, s)
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session_id is required: %w", ErrNotFound)
	}
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s, nil
}

func (r *Registry) Len() int { return r.sessions.Len() }

// Close cancels every session.
func (r *Registry) Close() {
	r.sessions.Purge()
}
