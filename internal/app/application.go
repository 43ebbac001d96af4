package app

import (
	"log/slog"

	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/board"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config appconf.Config
	Logger *slog.Logger
	Board  *board.Manager
}
