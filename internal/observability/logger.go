package observability

import (
	"io"
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/climate-projection-explorer/internal/config"
)

const serviceName = "climate-projection-explorer"

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT, tags it with
// the service name, and installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}

// NewCLILogger writes text logs to w so that stdout stays free for command output.
// Unknown levels fall back to info.
func NewCLILogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}
