package server

import "github.com/labstack/echo/v4"

func (s *Server) handleIndex(c echo.Context) error {
	return s.renderTemplate(c, "index.html", nil)
}
