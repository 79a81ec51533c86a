package server

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/screencoach/internal/domain"
	apperrors "github.com/pscheid92/screencoach/internal/errors"
)

// --- Tracked apps ---

func (s *Server) handleListApps(c echo.Context) error {
	apps, err := s.app.ListApps(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to list apps", err)
	}
	return c.JSON(200, apps)
}

type addAppRequest struct {
	Name             string `json:"name"`
	PackageName      string `json:"packageName"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
}

func (s *Server) handleAddApp(c echo.Context) error {
	var req addAppRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	app, err := s.app.AddApp(c.Request().Context(), req.Name, req.PackageName, req.TimeLimitMinutes)
	if err != nil {
		return err
	}
	return c.JSON(201, app)
}

type updateAppRequest struct {
	TimeLimitMinutes int `json:"timeLimitMinutes"`
}

func (s *Server) handleUpdateAppLimit(c echo.Context) error {
	var req updateAppRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	app, err := s.app.UpdateAppLimit(c.Request().Context(), c.Param("pkg"), req.TimeLimitMinutes)
	if err != nil {
		return err
	}
	return c.JSON(200, app)
}

func (s *Server) handleRemoveApp(c echo.Context) error {
	if err := s.app.RemoveApp(c.Request().Context(), c.Param("pkg")); err != nil {
		return err
	}
	return c.NoContent(204)
}

// --- Usage, breaks, streak ---

func (s *Server) handleTodayUsage(c echo.Context) error {
	record, err := s.app.TodayUsage(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load usage", err)
	}
	return c.JSON(200, record)
}

func (s *Server) handleUsageForDate(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return err
	}

	record, err := s.app.UsageForDate(c.Request().Context(), date)
	if err != nil {
		return apperrors.InternalError("failed to load usage", err)
	}
	return c.JSON(200, record)
}

func (s *Server) handleBreaksForDate(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return err
	}

	breaks, err := s.app.BreaksForDate(c.Request().Context(), date)
	if err != nil {
		return apperrors.InternalError("failed to load breaks", err)
	}
	return c.JSON(200, breaks)
}

func (s *Server) handleStreak(c echo.Context) error {
	streak, err := s.app.CurrentStreak(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to compute streak", err)
	}
	return c.JSON(200, map[string]int{"streak": streak})
}

func (s *Server) handleOverview(c echo.Context) error {
	overview, err := s.app.GetOverview(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to assemble overview", err)
	}
	return c.JSON(200, overview)
}

// --- Settings ---

func (s *Server) handleGetSettings(c echo.Context) error {
	settings, err := s.app.GetSettings(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load settings", err)
	}
	return c.JSON(200, settings)
}

func (s *Server) handleSaveSettings(c echo.Context) error {
	var settings domain.Settings
	if err := c.Bind(&settings); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.SaveSettings(c.Request().Context(), settings); err != nil {
		return err
	}
	return c.JSON(200, settings)
}

// --- Countdown timers ---

func (s *Server) handleListTimers(c echo.Context) error {
	return c.JSON(200, s.app.Timers())
}

func (s *Server) handleStartTimer(c echo.Context) error {
	snap, err := s.app.StartTimer(c.Request().Context(), c.Param("pkg"))
	if err != nil {
		return err
	}
	return c.JSON(200, snap)
}

func (s *Server) handlePauseTimer(c echo.Context) error {
	if err := s.app.PauseTimer(c.Param("pkg")); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "paused"})
}

func (s *Server) handleResumeTimer(c echo.Context) error {
	if err := s.app.ResumeTimer(c.Param("pkg")); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "running"})
}

func (s *Server) handleStopTimer(c echo.Context) error {
	if err := s.app.StopTimer(c.Param("pkg")); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "stopped"})
}

// --- Breaks and visibility ---

func (s *Server) handlePendingBreak(c echo.Context) error {
	return c.JSON(200, map[string]any{"pendingBreak": s.app.PendingBreak()})
}

func (s *Server) handleBreakActivities(c echo.Context) error {
	return c.JSON(200, s.app.BreakActivities())
}

func (s *Server) handleCompleteBreak(c echo.Context) error {
	rec, err := s.app.CompleteBreak(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingBreak) {
			return err
		}
		return apperrors.InternalError("failed to complete break", err)
	}
	return c.JSON(200, rec)
}

type visibilityRequest struct {
	Foreground bool `json:"foreground"`
}

func (s *Server) handleVisibility(c echo.Context) error {
	var req visibilityRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	s.app.SetVisibility(req.Foreground)
	return c.JSON(200, map[string]bool{"foreground": req.Foreground})
}

func parseDate(raw string) (string, error) {
	if _, err := time.Parse(domain.DateLayout, raw); err != nil {
		return "", apperrors.ValidationError("invalid date, expected YYYY-MM-DD").WithField("date", raw)
	}
	return raw, nil
}
