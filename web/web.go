// Package web holds static assets embedded into the server binary.
package web

import "embed"

// TemplateFiles contains the HTML templates served by the HTTP server.
//
//go:embed templates/*.html
var TemplateFiles embed.FS
