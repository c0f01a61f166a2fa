package hub

import (
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/pscheid92/chatrelay/internal/protocol"
)

// readLoop consumes payload frames until the transport reports closure.
// Control frames never surface here; the websocket library answers them
// internally. A frame that fails to decode is logged and dropped, and the
// connection stays open.
func (h *Hub) readLoop(id uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				slog.Warn("websocket read failed", "connection_id", id, "error", err)
			}
			return
		}

		msg, err := protocol.DecodeInbound(data)
		if err != nil {
			slog.Warn("dropping malformed message", "connection_id", id, "error", err)
			h.metrics.DecodeErrors.Inc()
			continue
		}

		h.metrics.MessagesReceived.Inc()
		h.broadcast(id, msg)
	}
}
