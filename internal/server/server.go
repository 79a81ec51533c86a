package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/screencoach/internal/app"
	"github.com/pscheid92/screencoach/internal/config"
	"github.com/pscheid92/screencoach/internal/domain"
	apperrors "github.com/pscheid92/screencoach/internal/errors"
	ws "github.com/pscheid92/screencoach/internal/websocket"
	goredis "github.com/redis/go-redis/v9"
)

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	app         *app.Service
	broadcaster *ws.StatusBroadcaster
	redisClient *goredis.Client
	clock       clockwork.Clock
	startTime   time.Time
}

func NewServer(cfg *config.Config, service *app.Service, broadcaster *ws.StatusBroadcaster, redisClient *goredis.Client, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.HTTPErrorHandler = errorHandler

	srv := &Server{
		echo:        e,
		config:      cfg,
		app:         service,
		broadcaster: broadcaster,
		redisClient: redisClient,
		clock:       clock,
		startTime:   clock.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// errorHandler maps structured errors and domain sentinels to JSON responses.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperrors.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.HTTPStatus()
		message = appErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	default:
		status, message = sentinelStatus(err)
	}

	if status >= 500 {
		slog.Error("Request failed", "path", c.Request().URL.Path, "error", err)
	}

	if jsonErr := c.JSON(status, map[string]string{"error": message}); jsonErr != nil {
		slog.Error("Failed to write error response", "error", jsonErr)
	}
}

func sentinelStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAppNotFound),
		errors.Is(err, domain.ErrTimerNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrAppAlreadyTracked),
		errors.Is(err, domain.ErrTooManyApps),
		errors.Is(err, domain.ErrNoPendingBreak):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidApp),
		errors.Is(err, domain.ErrInvalidSettings):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
