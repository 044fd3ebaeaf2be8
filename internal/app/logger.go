package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted --log-level values, pre-validated by the CLI
// layer. An unknown value falls back to info rather than failing a run over
// a logging knob.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the run's logger on logW, kept separate from the report
// writer so that piping the report never mixes in log lines. It does not
// touch the global logger; each App carries its own instance.
func newLogger(levelStr, formatStr string, logW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "text" {
		return slog.New(slog.NewTextHandler(logW, opts))
	}
	return slog.New(slog.NewJSONHandler(logW, opts))
}
