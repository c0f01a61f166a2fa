// Package server implements the HTTP surface using the Echo framework.
//
// Routes: chat page (/), WebSocket chat endpoint (/chat), stats (/api/stats),
// Prometheus metrics (/metrics), health probes (/health/*), and version info.
// New WebSocket connections pass through the connection limits before the
// upgrade; admitted connections are handed to the hub.
package server
