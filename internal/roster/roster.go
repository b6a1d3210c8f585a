// Package roster holds the read-only catalog of selectable participants and
// discussion topics. A Roster is built once from a Source and passed to the
// components that need it; nothing here is mutated after construction.
package roster

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyRoster       = errors.New("roster has no participants")
	ErrDuplicateID       = errors.New("duplicate participant id")
	ErrParticipantNoName = errors.New("participant name is required")
)

// Participant is a selectable named entity. Identity is by ID.
type Participant struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"name" yaml:"name"`
	AvatarRef   string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	VoiceRef    string `json:"voice,omitempty" yaml:"voice,omitempty"`
}

// Source loads a roster from somewhere outside the core.
type Source interface {
	Load(ctx context.Context) (*Roster, error)
}

// Roster is an ordered, read-only collection of participants plus the fixed
// topic list offered to users.
type Roster struct {
	participants []Participant
	byID         map[string]int
	topics       []string
}

// New validates and indexes participants. Missing IDs are derived from the
// display name.
func New(participants []Participant, topics []string) (*Roster, error) {
	if len(participants) == 0 {
		return nil, ErrEmptyRoster
	}
	r := &Roster{
		participants: make([]Participant, 0, len(participants)),
		byID:         make(map[string]int, len(participants)),
	}
	for i, p := range participants {
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		if p.DisplayName == "" {
			return nil, fmt.Errorf("participant #%d: %w", i, ErrParticipantNoName)
		}
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = Slug(p.DisplayName)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		r.byID[p.ID] = len(r.participants)
		r.participants = append(r.participants, p)
	}
	seen := make(map[string]bool, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		r.topics = append(r.topics, t)
	}
	return r, nil
}

// Participants returns a copy of the ordered participant list.
func (r *Roster) Participants() []Participant {
	return append([]Participant(nil), r.participants...)
}

// Topics returns a copy of the topic list.
func (r *Roster) Topics() []string {
	return append([]string(nil), r.topics...)
}

// Lookup finds a participant by id, falling back to a case-insensitive
// display name match.
func (r *Roster) Lookup(key string) (Participant, bool) {
	key = strings.TrimSpace(key)
	if i, ok := r.byID[key]; ok {
		return r.participants[i], true
	}
	if i, ok := r.byID[Slug(key)]; ok {
		return r.participants[i], true
	}
	for _, p := range r.participants {
		if strings.EqualFold(p.DisplayName, key) {
			return p, true
		}
	}
	return Participant{}, false
}

// HasTopic reports whether t is one of the offered topics.
func (r *Roster) HasTopic(t string) bool {
	t = strings.TrimSpace(t)
	for _, v := range r.topics {
		if v == t {
			return true
		}
	}
	return false
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a display name into a stable id ("Ada Lovelace" -> "ada-lovelace").
func Slug(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
