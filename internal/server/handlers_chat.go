package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/chatrelay/internal/errors"
)

// handleChat admits the client against the connection limits, upgrades the
// request to a WebSocket, and hands the connection to the hub. The handler
// blocks until the client disconnects.
func (s *Server) handleChat(c echo.Context) error {
	ip := c.RealIP()

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		if reason == LimitReasonGlobal {
			return apperrors.UnavailableError("connection limit reached").
				WithContext("reason", string(reason))
		}
		return apperrors.RateLimitedError("too many connections").
			WithContext("ip", ip).
			WithContext("reason", string(reason))
	}
	defer s.limits.Release(ip)

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		slog.Warn("websocket upgrade failed", "ip", ip, "error", err)
		return nil
	}

	s.hub.Serve(conn)
	return nil
}
