// Package transcript turns raw generated text into attributed turns.
package transcript

import (
	"strings"

	"symposium/internal/roster"
)

// Turn is one attributed line of dialogue.
type Turn struct {
	Speaker roster.Participant `json:"speaker"`
	Text    string             `json:"text"`
}

// Transcript is the ordered list of turns produced by one generation.
type Transcript []Turn

// Assign splits raw on line breaks, drops blank lines and attributes the i-th
// remaining line to participants[i % len(participants)]. Speaker labels that
// the model wrote into the text are kept verbatim and ignored for attribution.
func Assign(raw string, participants []roster.Participant) Transcript {
	if len(participants) == 0 {
		return Transcript{}
	}
	out := Transcript{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, Turn{
			Speaker: participants[len(out)%len(participants)],
			Text:    line,
		})
	}
	return out
}

// Clone returns an independent copy.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	return append(Transcript(nil), t...)
}
