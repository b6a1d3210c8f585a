package rpc

import (
	"symposium/internal/discussion"
	"symposium/internal/roster"
)

type ListParticipantsRequest struct{}

type ListParticipantsResponse struct {
	Participants []roster.Participant `json:"participants"`
}

type ListTopicsRequest struct{}

type ListTopicsResponse struct {
	Topics []string `json:"topics"`
}

type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Selection Selection `json:"selection"`
}

type ToggleParticipantRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
}

type ToggleParticipantResponse struct {
	Selected  bool      `json:"selected"`
	Selection Selection `json:"selection"`
}

// SetModeratorRequest clears the moderator when ParticipantID is empty.
type SetModeratorRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
}

type SetModeratorResponse struct {
	Selection Selection `json:"selection"`
}

type SetTopicRequest struct {
	SessionID string `json:"session_id"`
	Topic     string `json:"topic"`
}

type SetTopicResponse struct {
	Selection Selection `json:"selection"`
}

// GenerateRequest starts a generation. With Wait the call returns once the
// generation has finished.
type GenerateRequest struct {
	SessionID string `json:"session_id"`
	Wait      bool   `json:"wait"`
}

type GenerateResponse struct {
	GenerationID string           `json:"generation_id"`
	State        discussion.State `json:"state"`
}

type GetStateRequest struct {
	SessionID string `json:"session_id"`
}

type GetStateResponse struct {
	Selection Selection        `json:"selection"`
	State     discussion.State `json:"state"`
}

// Selection is the client view of a session's selection.
type Selection struct {
	Participants []roster.Participant `json:"participants"`
	Moderator    *roster.Participant  `json:"moderator,omitempty"`
	Topic        string               `json:"topic"`
	Ready        bool                 `json:"ready"`
	Problem      string               `json:"problem,omitempty"`
}
