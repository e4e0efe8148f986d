package logger

import (
	"log/slog"
	"os"
)

var levelVar = new(slog.LevelVar)

// L is the process-wide structured logger. Handlers and components log
// through it with key/value attrs.
var L = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))

// Setup configures the global log level. Debug mode lowers the level so
// per-attempt gateway transitions become visible.
func Setup(debug bool) {
	if debug {
		levelVar.Set(slog.LevelDebug)
		return
	}
	levelVar.Set(slog.LevelInfo)
}
