// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stlog exposes leveled logging capabilities.
//
// stlog wraps two loggers and adds log levels to them:
// There is a standard "log" package logger writing to stderr and another
// using the kernel syslog system.
package stlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	prefix   string = "stmsr: "
	errorTag string = "[ERROR] "
	warnTag  string = "[WARN]  "
	infoTag  string = "[INFO]  "
	debugTag string = "[DEBUG] "
)

type LogLevel int

const (
	ErrorLevel LogLevel = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

// String implements fmt.Stringer.
func (l LogLevel) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

type LogOutput int

const (
	StdError LogOutput = iota
	KernelSyslog
)

var ErrUnknownLevel = errors.New("unknown log level")

//nolint:gochecknoglobals
var (
	mu  sync.RWMutex
	stl levelLogger = newStandardLogger(os.Stderr)
)

type levelLogger interface {
	setLevel(level LogLevel)
	logLevel() LogLevel
	print(tag, format string, v ...interface{})
}

// ParseLevel maps the command line spelling of a level to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch s {
	case "e", "error":
		return ErrorLevel, nil
	case "w", "warn":
		return WarnLevel, nil
	case "i", "info":
		return InfoLevel, nil
	case "d", "debug":
		return DebugLevel, nil
	default:
		return InfoLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// SetOutput sets the packages underlying logger. The current level is
// carried over to the new logger.
func SetOutput(o LogOutput) error {
	mu.Lock()
	defer mu.Unlock()

	level := stl.logLevel()

	var next levelLogger

	switch o {
	case KernelSyslog:
		kl, err := newKernelLogger()
		if err != nil {
			return err
		}

		next = kl
	default:
		next = newStandardLogger(os.Stderr)
	}

	next.setLevel(level)
	stl = next

	return nil
}

// SetWriter replaces the package's logger by a standard logger writing to w.
// The current level is carried over.
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	next := newStandardLogger(w)
	next.setLevel(stl.logLevel())
	stl = next
}

// SetLevel sets the logging level of stlog package. Unknown levels fall
// back to DebugLevel.
func SetLevel(l LogLevel) {
	switch l {
	case ErrorLevel, WarnLevel, InfoLevel, DebugLevel:
	default:
		l = DebugLevel
	}

	mu.RLock()
	defer mu.RUnlock()

	stl.setLevel(l)
}

// Level returns the log level set.
func Level() LogLevel {
	mu.RLock()
	defer mu.RUnlock()

	return stl.logLevel()
}

func logAt(level LogLevel, tag, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	if stl.logLevel() >= level {
		stl.print(tag, format, v...)
	}
}

// Error prints error messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Error(format string, v ...interface{}) {
	logAt(ErrorLevel, errorTag, format, v...)
}

// Warn prints waring messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Warn(format string, v ...interface{}) {
	logAt(WarnLevel, warnTag, format, v...)
}

// Info prints info messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Info(format string, v ...interface{}) {
	logAt(InfoLevel, infoTag, format, v...)
}

// Debug prints debug messages to the currently active logger when permitted
// by the log level. Input can be formatted according to fmt.Printf.
func Debug(format string, v ...interface{}) {
	logAt(DebugLevel, debugTag, format, v...)
}
