package rpc

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"symposium/internal/discussion"
	"symposium/internal/notify"
)

const (
	discussionWSWriteWait = 10 * time.Second
	discussionWSPongWait  = 60 * time.Second
	discussionWSPingEvery = (discussionWSPongWait * 9) / 10
)

var discussionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type discussionWSInbound struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId,omitempty"`
	Topic         string `json:"topic,omitempty"`
}

type discussionWSOutbound struct {
	Type         string               `json:"type"`
	SessionID    string               `json:"sessionId,omitempty"`
	GenerationID string               `json:"generationId,omitempty"`
	Selected     bool                 `json:"selected,omitempty"`
	State        *discussion.State    `json:"state,omitempty"`
	Selection    *Selection           `json:"selection,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Code         string               `json:"code,omitempty"`
	Message      string               `json:"message,omitempty"`
}

// HandleDiscussionWS streams state changes and notifications of one session
// and accepts selection edits and generate requests.
func (h *DiscussionHandler) HandleDiscussionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := discussionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(discussionWSPongWait)); err != nil {
		log.Printf("discussion ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(discussionWSPongWait))
	})

	writeCh := make(chan discussionWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(discussionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(discussionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(discussionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	pushDiscussionWS(writeCh, discussionWSOutbound{Type: "subscribed", SessionID: sess.ID})

	states := sess.Orchestrator.Subscribe(ctx)
	notes := sess.Events.Subscribe(ctx, 16)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				pushDiscussionWS(writeCh, discussionWSOutbound{Type: "state", SessionID: sess.ID, State: &st})
			case n, ok := <-notes:
				if !ok {
					return
				}
				pushDiscussionWS(writeCh, discussionWSOutbound{Type: "notification", SessionID: sess.ID, Notification: &n})
			}
		}
	}()

	fail := func(err error) {
		pushDiscussionWS(writeCh, discussionWSOutbound{
			Type:    "error",
			Code:    codeOf(err).String(),
			Message: err.Error(),
		})
	}
	selectionAck := func(kind string, selected bool) {
		view := h.selectionView(ctx, sess)
		pushDiscussionWS(writeCh, discussionWSOutbound{Type: kind, SessionID: sess.ID, Selected: selected, Selection: &view})
	}

	for {
		var in discussionWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		switch msgType {
		case "":
			pushDiscussionWS(writeCh, discussionWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "type is required",
			})
		case "ping":
			pushDiscussionWS(writeCh, discussionWSOutbound{Type: "pong"})
		case "toggle":
			selected, err := h.toggle(sess, in.ParticipantID)
			if err != nil {
				fail(err)
				continue
			}
			selectionAck("toggle_ack", selected)
		case "set_moderator":
			if err := h.setModerator(sess, in.ParticipantID); err != nil {
				fail(err)
				continue
			}
			selectionAck("set_moderator_ack", false)
		case "set_topic":
			sess.Orchestrator.SetTopic(in.Topic)
			selectionAck("set_topic_ack", false)
		case "generate":
			id, err := sess.Orchestrator.Start(ctx)
			if err != nil {
				fail(err)
				continue
			}
			pushDiscussionWS(writeCh, discussionWSOutbound{Type: "generate_ack", SessionID: sess.ID, GenerationID: id})
		default:
			pushDiscussionWS(writeCh, discussionWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
	}
}

func pushDiscussionWS(writeCh chan discussionWSOutbound, out discussionWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
