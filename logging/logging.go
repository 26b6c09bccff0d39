// Package logging holds the process-wide zerolog logger. Stdout belongs to
// the hook protocol, so every log line goes to stderr (and optionally a file).
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var Logger zerolog.Logger

func init() {
	Logger = New(os.Stderr, "")
}

// New builds a console logger writing to w. When logFile is not empty, lines
// are also appended there as JSON.
func New(w io.Writer, logFile string) zerolog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}

	var out io.Writer = zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
	if logFile != "" {
		if fh, err := openLogFile(logFile); err == nil {
			out = zerolog.MultiLevelWriter(out, fh)
		}
	}

	return zerolog.New(out).With().Timestamp().Logger()
}

// Setup replaces the global logger, keeping the requested level.
func Setup(level zerolog.Level, logFile string) {
	Logger = New(os.Stderr, logFile).Level(level)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// ParseLevel maps the CLI spelling of a level onto zerolog. Unknown names
// fall back to warn.
func ParseLevel(s string) (zerolog.Level, bool) {
	switch s {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "err", "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	default:
		return zerolog.WarnLevel, false
	}
}

func With() zerolog.Context {
	return Logger.With()
}

func Trace() *zerolog.Event {
	return Logger.Trace()
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Info() *zerolog.Event {
	return Logger.Info()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
