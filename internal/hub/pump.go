package hub

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteTimeout = 5 * time.Second

// runPump drains one connection's queue to its transport, preserving enqueue
// order. It exits when the queue is closed and drained, or when a write fails.
// On exit it closes both the queue and the transport, so the paired reader
// unblocks and no later enqueue can outlive the consumer.
//
// There is no write deadline and no keepalive ping here: connections live
// until the transport itself reports closure.
func (h *Hub) runPump(id uint64, q *queue, conn *websocket.Conn) {
	defer func() {
		q.close()
		_ = conn.Close()
	}()

	for {
		msg, ok := q.dequeue()
		if !ok {
			deadline := h.clock.Now().Add(closeWriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}

		start := h.clock.Now()
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Warn("websocket write failed", "connection_id", id, "error", err)
			return
		}
		h.metrics.MessageWriteDuration.Observe(h.clock.Since(start).Seconds())
	}
}
