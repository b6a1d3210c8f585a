package discussion

import (
	"fmt"
	"time"

	"symposium/internal/transcript"
)

// Status is the phase of the generation state machine.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in_flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, c := range []Status{StatusIdle, StatusInFlight, StatusSucceeded, StatusFailed} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// State is an immutable view of the orchestrator. Transcript always holds the
// last successful transcript, so a failed generation keeps the previous one.
type State struct {
	Version      uint64                `json:"version"`
	GenerationID string                `json:"generation_id,omitempty"`
	Status       Status                `json:"status"`
	Attempt      int                   `json:"attempt"`
	Attempts     []Attempt             `json:"attempts,omitempty"`
	Reason       FailureReason         `json:"reason,omitempty"`
	Error        string                `json:"error,omitempty"`
	Usage        Usage                 `json:"usage"`
	Transcript   transcript.Transcript `json:"transcript"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Usage counts provider traffic of the current generation. It is filled by
// the llm.WithHooks middleware, so it stays zero for unwrapped clients.
type Usage struct {
	Requests      int `json:"requests"`
	Failures      int `json:"failures"`
	PromptBytes   int `json:"prompt_bytes"`
	ResponseBytes int `json:"response_bytes"`
}

// Busy reports whether a generation is in flight.
func (s State) Busy() bool { return s.Status == StatusInFlight }

func (s State) clone() State {
	s.Attempts = append([]Attempt(nil), s.Attempts...)
	s.Transcript = s.Transcript.Clone()
	return s
}
