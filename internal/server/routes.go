package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Tracked apps
	s.echo.GET("/api/apps", s.handleListApps)
	s.echo.POST("/api/apps", s.handleAddApp)
	s.echo.PATCH("/api/apps/:pkg", s.handleUpdateAppLimit)
	s.echo.DELETE("/api/apps/:pkg", s.handleRemoveApp)

	// Usage, breaks, streak
	s.echo.GET("/api/usage/today", s.handleTodayUsage)
	s.echo.GET("/api/usage/:date", s.handleUsageForDate)
	s.echo.GET("/api/breaks/:date", s.handleBreaksForDate)
	s.echo.GET("/api/streak", s.handleStreak)
	s.echo.GET("/api/overview", s.handleOverview)

	// Settings
	s.echo.GET("/api/settings", s.handleGetSettings)
	s.echo.PUT("/api/settings", s.handleSaveSettings)

	// Countdown timers
	s.echo.GET("/api/timers", s.handleListTimers)
	s.echo.POST("/api/timers/:pkg/start", s.handleStartTimer)
	s.echo.POST("/api/timers/:pkg/pause", s.handlePauseTimer)
	s.echo.POST("/api/timers/:pkg/resume", s.handleResumeTimer)
	s.echo.POST("/api/timers/:pkg/stop", s.handleStopTimer)

	// Breaks and visibility
	s.echo.GET("/api/break", s.handlePendingBreak)
	s.echo.GET("/api/break/activities", s.handleBreakActivities)
	s.echo.POST("/api/break/complete", s.handleCompleteBreak)
	s.echo.POST("/api/visibility", s.handleVisibility)

	// Live status snapshots
	s.echo.GET("/ws", s.handleWebSocket)
}
