// Package server implements the HTTP server using Echo framework.
//
// Routes: tracked apps (CRUD), usage/breaks/streak (read), settings, countdown
// timers, break completion, visibility, WebSocket status snapshots and health.
// Handlers split by concern: handlers_api.go, handlers_health.go, handlers_ws.go.
package server
