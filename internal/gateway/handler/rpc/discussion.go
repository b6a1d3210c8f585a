package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"symposium/internal/avatar"
	"symposium/internal/discussion"
	"symposium/internal/gateway/session"
	"symposium/internal/roster"
)

type DiscussionHandler struct {
	sessions *session.Registry
	roster   *roster.Roster
	avatars  avatar.Resolver
}

func NewDiscussionHandler(sessions *session.Registry, r *roster.Roster, avatars avatar.Resolver) *DiscussionHandler {
	return &DiscussionHandler{sessions: sessions, roster: r, avatars: avatars}
}

func (h *DiscussionHandler) CreateSession(ctx context.Context, _ *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	s, err := h.sessions.Create()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateSessionResponse{
		SessionID: s.ID,
		Selection: h.selectionView(ctx, s),
	}), nil
}

func (h *DiscussionHandler) ToggleParticipant(ctx context.Context, req *connect.Request[ToggleParticipantRequest]) (*connect.Response[ToggleParticipantResponse], error) {
	s, err := h.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	selected, err := h.toggle(s, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ToggleParticipantResponse{
		Selected:  selected,
		Selection: h.selectionView(ctx, s),
	}), nil
}

func (h *DiscussionHandler) SetModerator(ctx context.Context, req *connect.Request[SetModeratorRequest]) (*connect.Response[SetModeratorResponse], error) {
	s, err := h.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := h.setModerator(s, req.Msg.ParticipantID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SetModeratorResponse{Selection: h.selectionView(ctx, s)}), nil
}

func (h *DiscussionHandler) SetTopic(ctx context.Context, req *connect.Request[SetTopicRequest]) (*connect.Response[SetTopicResponse], error) {
	s, err := h.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.Orchestrator.SetTopic(req.Msg.Topic)
	return connect.NewResponse(&SetTopicResponse{Selection: h.selectionView(ctx, s)}), nil
}

// Generate starts a generation. A generation that ends in failure is not an
// RPC error; the failure is reported in the returned state.
func (h *DiscussionHandler) Generate(ctx context.Context, req *connect.Request[GenerateRequest]) (*connect.Response[GenerateResponse], error) {
	s, err := h.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	o := s.Orchestrator
	if !req.Msg.Wait {
		id, err := o.Start(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(&GenerateResponse{GenerationID: id, State: o.State()}), nil
	}

	st, err := o.Generate(ctx)
	var ge *discussion.GenerationError
	if err != nil && !errors.As(err, &ge) {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GenerateResponse{GenerationID: st.GenerationID, State: st}), nil
}

func (h *DiscussionHandler) GetState(ctx context.Context, req *connect.Request[GetStateRequest]) (*connect.Response[GetStateResponse], error) {
	s, err := h.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetStateResponse{
		Selection: h.selectionView(ctx, s),
		State:     s.Orchestrator.State(),
	}), nil
}

func (h *DiscussionHandler) lookup(id string) (roster.Participant, error) {
	id = strings.TrimSpace(id)
	p, ok := h.roster.Lookup(id)
	if !ok {
		return roster.Participant{}, fmt.Errorf("%q: %w", id, errUnknownParticipant)
	}
	return p, nil
}

func (h *DiscussionHandler) toggle(s *session.Session, participantID string) (bool, error) {
	p, err := h.lookup(participantID)
	if err != nil {
		return false, err
	}
	return s.Orchestrator.ToggleParticipant(p)
}

func (h *DiscussionHandler) setModerator(s *session.Session, participantID string) error {
	if strings.TrimSpace(participantID) == "" {
		s.Orchestrator.ClearModerator()
		return nil
	}
	p, err := h.lookup(participantID)
	if err != nil {
		return err
	}
	return s.Orchestrator.SetModerator(p)
}

func (h *DiscussionHandler) selectionView(ctx context.Context, s *session.Session) Selection {
	sel := s.Orchestrator.Selection()
	snap := sel.Snapshot()
	view := Selection{
		Participants: avatar.ResolveAll(ctx, h.avatars, snap.Participants),
		Topic:        snap.Topic,
	}
	if snap.Moderator != nil {
		m := avatar.ResolveAll(ctx, h.avatars, []roster.Participant{*snap.Moderator})[0]
		view.Moderator = &m
	}
	if _, err := sel.Validate(); err != nil {
		view.Problem = err.Error()
	} else {
		view.Ready = true
	}
	return view
}
