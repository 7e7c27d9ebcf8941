package internal

import (
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Only warnings and errors are logged.
	debugMode   atomic.Bool // Debug records are logged.
	verboseMode atomic.Bool // Records carry their source location.
)

// Seeds the output modes from the linker flags. Values that do not parse as
// booleans are ignored.
func init() {
	for raw, mode := range map[string]*atomic.Bool{
		rawQuiet:   &quietMode,
		rawDebug:   &debugMode,
		rawVerbose: &verboseMode,
	} {
		if v, err := strconv.ParseBool(raw); err == nil {
			mode.Store(v)
		}
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) { quietMode.Store(enabled) }

// Whether quiet mode is enabled.
func IsQuiet() bool { return quietMode.Load() }

// Enables or disables debug mode.
func SetDebug(enabled bool) { debugMode.Store(enabled) }

// Whether debug mode is enabled.
func IsDebug() bool { return debugMode.Load() }

// Enables or disables verbose mode.
func SetVerbose(enabled bool) { verboseMode.Store(enabled) }

// Whether verbose mode is enabled.
func IsVerbose() bool { return verboseMode.Load() }

// Returns the log level implied by the current modes. Debug wins over quiet.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Creates a text logger writing to w, configured from the current modes.
//
// Verbose mode adds the source location of every record.
func NewLogger(w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     LogLevel(),
		AddSource: IsVerbose(),
	})
	return slog.New(handler.WithGroup(Name))
}
