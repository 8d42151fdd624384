// Copyright 2023 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package log provides leveled printf-style logging.
//
// A Logger dispatches formatted events to its writer when the event level
// is at or above the logger's level. The package-level functions log
// through a process-wide default logger writing to stderr.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LevelLogger provides level-related logging functions
type LevelLogger interface {
	LevelEnabled(level Level) bool

	Trace(format string, v ...any)
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// NewLogger creates a logger writing events of the given level or above to out
func NewLogger(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level}
}

// SetLevel changes the minimum level the logger emits
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the minimum level the logger emits
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LevelEnabled returns true if the given level is enabled
func (l *Logger) LevelEnabled(level Level) bool {
	return level >= l.GetLevel()
}

// Log emits a formatted event at the given level
func (l *Logger) Log(level Level, format string, v ...any) {
	if !l.LevelEnabled(level) {
		return
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s %s\n", time.Now().Format("2006/01/02 15:04:05"), levelTag(level), msg)
}

func levelTag(level Level) string {
	switch level {
	case TRACE:
		return "[T]"
	case DEBUG:
		return "[D]"
	case INFO:
		return "[I]"
	case WARN:
		return "[W]"
	case ERROR:
		return "[E]"
	case FATAL:
		return "[F]"
	}
	return "[?]"
}

func (l *Logger) Trace(format string, v ...any) { l.Log(TRACE, format, v...) }
func (l *Logger) Debug(format string, v ...any) { l.Log(DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.Log(INFO, format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.Log(WARN, format, v...) }
func (l *Logger) Error(format string, v ...any) { l.Log(ERROR, format, v...) }

// Fatal logs the event and aborts the process
func (l *Logger) Fatal(format string, v ...any) {
	l.Log(FATAL, format, v...)
	os.Exit(1)
}
