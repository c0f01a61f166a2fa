package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chatrelay/internal/metrics"
	"github.com/pscheid92/chatrelay/internal/protocol"
)

// NameResolver maps a connection id to the display name stamped on the
// messages that connection sends.
type NameResolver interface {
	DisplayName(id uint64) string
}

// StaticName resolves every connection to the same display name.
type StaticName string

func (s StaticName) DisplayName(uint64) string { return string(s) }

// Hub owns the connection registry and fans each inbound message out to all
// other connections.
type Hub struct {
	names   NameResolver
	clock   clockwork.Clock
	metrics *metrics.ChatMetrics

	ids      allocator
	registry *registry
	pumps    sync.WaitGroup
}

func New(names NameResolver, clock clockwork.Clock, chatMetrics *metrics.ChatMetrics) *Hub {
	return &Hub{
		names:    names,
		clock:    clock,
		metrics:  chatMetrics,
		registry: newRegistry(),
	}
}

// Serve registers the connection, starts its pump, and runs its read loop.
// It blocks until the transport reports closure. The registry entry is gone
// by the time it returns; the pump may still be draining queued messages.
func (h *Hub) Serve(conn *websocket.Conn) {
	id := h.ids.next()
	q := newQueue()

	h.registry.insert(id, q)
	h.pumps.Add(1)
	go func() {
		defer h.pumps.Done()
		h.runPump(id, q, conn)
	}()

	h.metrics.ConnectionsActive.Inc()
	h.metrics.ConnectionsTotal.Inc()
	slog.Info("new chat user", "connection_id", id)

	connectedAt := h.clock.Now()
	defer func() {
		h.disconnect(id)
		h.metrics.ConnectionsActive.Dec()
		h.metrics.ConnectionDuration.Observe(h.clock.Since(connectedAt).Seconds())
		slog.Info("chat user disconnected", "connection_id", id)
	}()

	h.readLoop(id, conn)
}

// disconnect unregisters the connection and closes its queue. Only the first
// call finds the entry; later calls are no-ops.
func (h *Hub) disconnect(id uint64) {
	if q, ok := h.registry.remove(id); ok {
		q.close()
	}
}

// broadcast fans one sender's message out to every other registered
// connection. The envelope is encoded once and the registry snapshot is taken
// before any enqueue, so no lock is held during I/O. Enqueue failures are
// swallowed; cleanup belongs to the receiving connection's own lifecycle.
func (h *Hub) broadcast(senderID uint64, msg protocol.Send) {
	data, err := protocol.EncodeNewMessage(protocol.NewMessage{
		By:   h.names.DisplayName(senderID),
		Text: msg.Text,
	})
	if err != nil {
		slog.Error("failed to encode chat message", "connection_id", senderID, "error", err)
		return
	}

	for _, e := range h.registry.snapshot() {
		if e.id == senderID {
			continue
		}
		if e.queue.enqueue(data) {
			h.metrics.MessagesBroadcast.Inc()
		} else {
			h.metrics.BroadcastDrops.Inc()
		}
	}
}

// GetClientCount returns the number of registered connections.
func (h *Hub) GetClientCount() int {
	return h.registry.size()
}

// Shutdown closes every registered connection and waits for the pumps to
// finish draining, or for ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	for _, e := range h.registry.snapshot() {
		h.disconnect(e.id)
	}

	done := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
