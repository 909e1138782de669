package application

import (
	"context"
	"log/slog"

	"map-assistant/internal/domain"
)

// Dispatcher hands a parsed command to whatever drives the map.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, cmd domain.Command) error
}

// LogDispatcher only records commands. Used when no map endpoint is configured.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) Dispatch(_ context.Context, text string, cmd domain.Command) error {
	d.Logger.Info("dispatching command",
		"text", text,
		"command", cmd.Kind,
		"locations", cmd.Locations,
	)
	return nil
}
