// Copyright 2023 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package log

import "os"

var defaultLogger = NewLogger(os.Stderr, INFO)

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}

// SetLevel changes the level of the default logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

func Trace(format string, v ...any) { defaultLogger.Log(TRACE, format, v...) }
func Debug(format string, v ...any) { defaultLogger.Log(DEBUG, format, v...) }
func Info(format string, v ...any)  { defaultLogger.Log(INFO, format, v...) }
func Warn(format string, v ...any)  { defaultLogger.Log(WARN, format, v...) }
func Error(format string, v ...any) { defaultLogger.Log(ERROR, format, v...) }
func Fatal(format string, v ...any) { defaultLogger.Fatal(format, v...) }
