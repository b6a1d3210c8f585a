package rpc

import (
	"net/http"

	"connectrpc.com/connect"
)

const (
	RosterServiceName     = "symposium.v1.RosterService"
	DiscussionServiceName = "symposium.v1.DiscussionService"

	RosterServiceListParticipantsProcedure      = "/" + RosterServiceName + "/ListParticipants"
	RosterServiceListTopicsProcedure            = "/" + RosterServiceName + "/ListTopics"
	DiscussionServiceCreateSessionProcedure     = "/" + DiscussionServiceName + "/CreateSession"
	DiscussionServiceToggleParticipantProcedure = "/" + DiscussionServiceName + "/ToggleParticipant"
	DiscussionServiceSetModeratorProcedure      = "/" + DiscussionServiceName + "/SetModerator"
	DiscussionServiceSetTopicProcedure          = "/" + DiscussionServiceName + "/SetTopic"
	DiscussionServiceGenerateProcedure          = "/" + DiscussionServiceName + "/Generate"
	DiscussionServiceGetStateProcedure          = "/" + DiscussionServiceName + "/GetState"
)

// NewRosterServiceHandler returns the path prefix and handler to mount.
func NewRosterServiceHandler(h *RosterHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(RosterServiceListParticipantsProcedure, connect.NewUnaryHandler(RosterServiceListParticipantsProcedure, h.ListParticipants, opts...))
	mux.Handle(RosterServiceListTopicsProcedure, connect.NewUnaryHandler(RosterServiceListTopicsProcedure, h.ListTopics, opts...))
	return "/" + RosterServiceName + "/", mux
}

// NewDiscussionServiceHandler returns the path prefix and handler to mount.
func NewDiscussionServiceHandler(h *DiscussionHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(DiscussionServiceCreateSessionProcedure, connect.NewUnaryHandler(DiscussionServiceCreateSessionProcedure, h.CreateSession, opts...))
	mux.Handle(DiscussionServiceToggleParticipantProcedure, connect.NewUnaryHandler(DiscussionServiceToggleParticipantProcedure, h.ToggleParticipant, opts...))
	mux.Handle(DiscussionServiceSetModeratorProcedure, connect.NewUnaryHandler(DiscussionServiceSetModeratorProcedure, h.SetModerator, opts...))
	mux.Handle(DiscussionServiceSetTopicProcedure, connect.NewUnaryHandler(DiscussionServiceSetTopicProcedure, h.SetTopic, opts...))
	mux.Handle(DiscussionServiceGenerateProcedure, connect.NewUnaryHandler(DiscussionServiceGenerateProcedure, h.Generate, opts...))
	mux.Handle(DiscussionServiceGetStateProcedure, connect.NewUnaryHandler(DiscussionServiceGetStateProcedure, h.GetState, opts...))
	return "/" + DiscussionServiceName + "/", mux
}
