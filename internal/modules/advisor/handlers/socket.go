package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

const socketWriteTimeout = 10 * time.Second

// socketFrame is sent to the client after every turn
type socketFrame struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleChatSocket handles GET /api/advisor/chat/ws. Each text frame
// {"message": "..."} is answered with one socketFrame. A new session is
// opened unless ?session_id= names an existing one; its greeting is the
// first frame.
func (h *Handler) HandleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")

	ctx := r.Context()
	sessionID := r.URL.Query().Get("session_id")
	if _, err := h.service.Transcript(sessionID); err != nil {
		opened := h.service.Open()
		sessionID = opened.SessionID
		if err := h.writeFrame(ctx, conn, socketFrame{SessionID: sessionID, Reply: opened.Messages[0].Content}); err != nil {
			return
		}
	}

	log := h.log.With().Str("session_id", sessionID).Logger()
	log.Debug().Msg("Chat socket opened")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Debug().Msg("Chat socket closed")
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			log.Debug().Err(err).Msg("Chat socket read failed")
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var req ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if h.writeFrame(ctx, conn, socketFrame{SessionID: sessionID, Error: "Invalid message"}) != nil {
				return
			}
			continue
		}

		frame := socketFrame{SessionID: sessionID}
		reply, err := h.service.Chat(ctx, sessionID, req.Message)
		if err != nil {
			log.Warn().Err(err).Msg("Chat turn failed")
			frame.Error = err.Error()
		} else {
			frame.Reply = reply.Reply
		}

		if err := h.writeFrame(ctx, conn, frame); err != nil {
			log.Debug().Err(err).Msg("Chat socket write failed")
			return
		}
	}
}

func (h *Handler) writeFrame(ctx context.Context, conn *websocket.Conn, frame socketFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
