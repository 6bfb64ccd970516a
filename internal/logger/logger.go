// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package logger wraps log/slog behind the small interface shape the
// teacher SDK's logger.LoggingClient exposes, so call sites elsewhere in
// this repository read exactly as common.LoggingClient.Error(...) did in
// the original: a handful of level methods taking a message and structured
// key/value pairs.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging interface every package in this repository depends
// on, instead of depending on *slog.Logger or the stdlib log package
// directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that always includes the given key/value pairs
	// on every subsequent line it emits.
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New builds the default Logger, writing leveled text to stdout. level is
// one of "debug", "info", "warn", "error" (case-insensitive); an
// unrecognized value defaults to "info".
func New(level string) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return &slogLogger{l: slog.New(slog.NewTextHandler(os.Stdout, opts))}
}

// FromSlog wraps an existing *slog.Logger, useful for tests that want to
// capture output.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}
