// Package logging builds the process-wide slog logger on top of tint.
//
// Output is colored only when written to a terminal. Redirected output keeps
// tint's layout but drops ANSI escapes and switches to RFC 3339 timestamps
// so log collectors can parse it. Source locations are added at debug level.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs a stderr logger at the named level as the slog default and
// returns it.
func Setup(level string) *slog.Logger {
	logger := New(os.Stderr, level)
	slog.SetDefault(logger)
	return logger
}

// New returns a logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	lvl := ParseLevel(level)
	color := isTerminal(w)

	format := time.RFC3339
	if color {
		format = time.Kitchen
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: format,
		AddSource:  lvl <= slog.LevelDebug,
		NoColor:    !color,
	}))
}

// ParseLevel maps a level name to a slog level. Unknown names mean INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
