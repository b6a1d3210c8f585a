// Package selection tracks the user's current choice of participants,
// moderator and topic, and enforces its cardinality invariants.
package selection

import (
	"errors"
	"strings"
	"sync"

	"symposium/internal/roster"
)

const (
	MinParticipants = 2
	MaxParticipants = 4
)

var (
	ErrSelectionFull        = errors.New("selection is full")
	ErrTooFewParticipants   = errors.New("too few participants selected")
	ErrNoTopic              = errors.New("no topic selected")
	ErrNoModerator          = errors.New("no moderator selected")
	ErrModeratorNotSelected = errors.New("moderator must be a selected participant")
)

// Snapshot is an immutable copy of a selection taken at a point in time.
type Snapshot struct {
	Participants []roster.Participant
	Moderator    *roster.Participant
	Topic        string
}

// HasModerator reports whether a moderator was chosen.
func (s Snapshot) HasModerator() bool { return s.Moderator != nil }

// Names returns the participant display names in selection order.
func (s Snapshot) Names() []string {
	out := make([]string, 0, len(s.Participants))
	for _, p := range s.Participants {
		out = append(out, p.DisplayName)
	}
	return out
}

// State holds the mutable selection for one session. It is safe for
// concurrent use.
type State struct {
	mu               sync.RWMutex
	participants     []roster.Participant
	moderatorID      string
	topic            string
	requireModerator bool
}

// Option configures a State.
type Option func(*State)

// WithRequiredModerator enables the moderator variant: Validate fails with
// ErrNoModerator until a moderator is set.
func WithRequiredModerator(required bool) Option {
	return func(s *State) { s.requireModerator = required }
}

func New(opts ...Option) *State {
	s := &State{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequiresModerator reports whether the moderator variant is enabled.
func (s *State) RequiresModerator() bool { return s.requireModerator }

// Toggle removes p when it is already selected, otherwise adds it. Adding a
// fifth participant fails with ErrSelectionFull and leaves the state unchanged.
// The returned bool reports whether p is selected afterwards.
func (s *State) Toggle(p roster.Participant) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(p.ID); i >= 0 {
		s.participants = append(s.participants[:i:i], s.participants[i+1:]...)
		if s.moderatorID == p.ID {
			s.moderatorID = ""
		}
		return false, nil
	}
	if len(s.participants) >= MaxParticipants {
		return false, ErrSelectionFull
	}
	s.participants = append(s.participants, p)
	return true, nil
}

// SetModerator sets p as moderator. It does nothing unless p is selected;
// the error is informational only.
func (s *State) SetModerator(p roster.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) < 0 {
		return ErrModeratorNotSelected
	}
	s.moderatorID = p.ID
	return nil
}

// ClearModerator removes the moderator, if any.
func (s *State) ClearModerator() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moderatorID = ""
}

// SetTopic sets the topic unconditionally.
func (s *State) SetTopic(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = strings.TrimSpace(topic)
}

// Snapshot copies the current selection without validating it.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Validate checks the selection is ready for generation and returns a
// snapshot of it.
func (s *State) Validate() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.participants) < MinParticipants {
		return Snapshot{}, ErrTooFewParticipants
	}
	if s.topic == "" {
		return Snapshot{}, ErrNoTopic
	}
	if s.requireModerator && s.moderatorID == "" {
		return Snapshot{}, ErrNoModerator
	}
	return s.snapshotLocked(), nil
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Participants: append([]roster.Participant(nil), s.participants...),
		Topic:        s.topic,
	}
	if i := s.indexLocked(s.moderatorID); s.moderatorID != "" && i >= 0 {
		m := s.participants[i]
		snap.Moderator = &m
	}
	return snap
}

func (s *State) indexLocked(id string) int {
	for i, p := range s.participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// IsValidationError reports whether err is one of the selection errors that
// block a generation from starting.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrTooFewParticipants) ||
		errors.Is(err, ErrNoTopic) ||
		errors.Is(err, ErrNoModerator) ||
		errors.Is(err, ErrSelectionFull)
}
