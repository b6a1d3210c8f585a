package rpc

import (
	"context"

	"connectrpc.com/connect"

	"symposium/internal/avatar"
	"symposium/internal/roster"
)

type RosterHandler struct {
	roster  *roster.Roster
	avatars avatar.Resolver
}

func NewRosterHandler(r *roster.Roster, avatars avatar.Resolver) *RosterHandler {
	return &RosterHandler{roster: r, avatars: avatars}
}

func (h *RosterHandler) ListParticipants(ctx context.Context, _ *connect.Request[ListParticipantsRequest]) (*connect.Response[ListParticipantsResponse], error) {
	return connect.NewResponse(&ListParticipantsResponse{
		Participants: avatar.ResolveAll(ctx, h.avatars, h.roster.Participants()),
	}), nil
}

func (h *RosterHandler) ListTopics(context.Context, *connect.Request[ListTopicsRequest]) (*connect.Response[ListTopicsResponse], error) {
	return connect.NewResponse(&ListTopicsResponse{Topics: h.roster.Topics()}), nil
}
