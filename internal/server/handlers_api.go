package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleStats(c echo.Context) error {
	stats := map[string]any{
		"connections": s.hub.GetClientCount(),
		"unique_ips":  s.limits.PerIP().UniqueIPs(),
	}
	if err := c.JSON(http.StatusOK, stats); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
