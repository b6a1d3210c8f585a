package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"symposium/internal/gateway/session"
	llmclient "symposium/internal/llmClient"
)

// DebugHandler serves health and inspection endpoints.
type DebugHandler struct {
	sessions *session.Registry
	provider string
	limits   llmclient.RateLimitHeaderAwareClient
}

// NewDebugHandler creates the handler. limits may be nil when the provider
// does not report rate-limit headers.
func NewDebugHandler(sessions *session.Registry, provider string, limits llmclient.RateLimitHeaderAwareClient) *DebugHandler {
	return &DebugHandler{sessions: sessions, provider: provider, limits: limits}
}

type rateLimitView struct {
	llmclient.RateLimitHeaders
	Exhausted bool `json:"exhausted"`
}

func (h *DebugHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body := map[string]any{
		"ok":       true,
		"provider": h.provider,
		"sessions": h.sessions.Len(),
	}
	if h.limits != nil {
		if last, ok := h.limits.LastRateLimitHeaders(); ok {
			body["rate_limit"] = rateLimitView{RateLimitHeaders: last, Exhausted: last.Exhausted()}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (h *DebugHandler) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"session_id": s.ID,
		"created_at": s.CreatedAt,
		"selection":  s.Orchestrator.Selection().Snapshot(),
		"state":      s.Orchestrator.State(),
	})
}
