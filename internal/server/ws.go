package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST endpoints are already open to any origin; the socket
	// follows the same policy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS serves a chat session over one WebSocket connection. Each text
// frame carries a chatRequest; each reply frame a chatResponse. Frames
// with missing fields get an error response and the loop continues; only
// read/write failures end the session.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("server: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	slog.Info("server: websocket session opened", "remote", conn.RemoteAddr())

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("server: websocket closed unexpectedly", "err", err)
			}
			return
		}
		if req.UserID == "" || req.Message == "" {
			if err := conn.WriteJSON(chatResponse{Response: "Üzgünüm, isteğinizi anlayamadım. Lütfen tekrar deneyin."}); err != nil {
				return
			}
			continue
		}

		reply := s.assistant.Process(r.Context(), req.UserID, req.Message)
		if err := conn.WriteJSON(chatResponse{Response: reply}); err != nil {
			return
		}
	}
}
