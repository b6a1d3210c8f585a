package server

import (
	"net/http"

	"symposium/internal/gateway/handler"
	"symposium/internal/gateway/handler/rpc"
	"symposium/internal/gateway/middleware"
)

func NewMux(
	rosterHandler *rpc.RosterHandler,
	discussionHandler *rpc.DiscussionHandler,
	debugHandler *handler.DebugHandler,
	allowedOrigins []string,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpc.NewRosterServiceHandler(rosterHandler))
	mux.Handle(rpc.NewDiscussionServiceHandler(discussionHandler))

	// Live updates
	mux.HandleFunc("/ws/discussion", discussionHandler.HandleDiscussionWS)

	// Debug Handlers
	mux.HandleFunc("/healthz", debugHandler.HandleHealth)
	mux.HandleFunc("/debug/session-state", debugHandler.HandleSessionState)

	// Middleware
	return middleware.CORS(allowedOrigins)(mux)
}
