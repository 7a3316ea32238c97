// Package logging wires this module's two ambient logging idioms
// together: the NTRIP toolkit's leveled, runtime-adjustable
// github.com/goblimey/go-tools/logger (used by apps/proxy/tcpprox.go for
// its verbose/quiet toggle) acts as the io.Writer sink for a structured
// log/slog.Logger (the idiom file_handler.Handle and
// apps/rtcmlogger/main.go use for their own event logs). Every component
// in this module takes a *slog.Logger; this package is how the
// application wires one up with the NTRIP toolkit's runtime-adjustable level
// knob attached.
package logging

import (
	"log/slog"

	gotoolslogger "github.com/goblimey/go-tools/logger"
)

// Level names accepted by the --logging-level CLI flag.
const (
	LevelError = "error"
	LevelInfo = "info"
	LevelDebug = "debug"
)

// goToolsLevelFor maps a slog level onto the 0/1 quiet/verbose scale
// github.com/goblimey/go-tools/logger uses (see
// apps/proxy/tcpprox.go's SetLogLevel(0|1)).
func goToolsLevelFor(level string) int {
	if level == LevelDebug || level == LevelInfo {
		return 1
	}
	return 0
}

// New creates the runtime-adjustable logger used by apps/ogntrack: a
// *gotoolslogger.LoggerT sink (so its level can be flipped at runtime the
// way the proxy's /status/loglevel endpoint does) wrapped in a
// *slog.Logger for structured call sites throughout the rest of the
// module. It returns both: components take the *slog.Logger, while the
// application holds onto the raw logger to implement its own runtime
// log-level toggle.
func New(level string) (*slog.Logger, *gotoolslogger.LoggerT) {
	raw := gotoolslogger.New()
	raw.SetLogLevel(goToolsLevelFor(level))

	handlerLevel := slog.LevelInfo
	if level == LevelDebug {
		handlerLevel = slog.LevelDebug
	}
	if level == LevelError {
		handlerLevel = slog.LevelError
	}

	handler := slog.NewTextHandler(raw, &slog.HandlerOptions{Level: handlerLevel})
	return slog.New(handler), raw
}

// SetLevel flips raw's verbosity at runtime, mirroring the proxy's
// /status/loglevel/{0,1} toggle without exposing an
// HTTP surface of its own.
func SetLevel(raw *gotoolslogger.LoggerT, level string) {
	raw.SetLogLevel(goToolsLevelFor(level))
}
