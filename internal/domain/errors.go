package domain

import "errors"

var (
	ErrAppNotFound       = errors.New("tracked app not found")
	ErrAppAlreadyTracked = errors.New("app is already tracked")
	ErrTooManyApps       = errors.New("tracked app limit reached")
	ErrInvalidApp        = errors.New("invalid app registration")
	ErrInvalidSettings   = errors.New("invalid settings values")
	ErrTimerNotFound     = errors.New("no active timer for app")
	ErrNoPendingBreak    = errors.New("no break is pending")
	ErrSourceUnavailable = errors.New("usage source unavailable on this platform")
	ErrTooManyClients    = errors.New("websocket client limit reached")
)
