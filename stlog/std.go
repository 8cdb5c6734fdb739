// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stlog

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
)

type standardLogger struct {
	out   *log.Logger
	level int32
}

func newStandardLogger(w io.Writer) *standardLogger {
	return &standardLogger{
		out:   log.New(w, "", log.LstdFlags),
		level: int32(InfoLevel),
	}
}

func (l *standardLogger) setLevel(level LogLevel) {
	atomic.StoreInt32(&l.level, int32(level))
}

func (l *standardLogger) logLevel() LogLevel {
	return LogLevel(atomic.LoadInt32(&l.level))
}

func (l *standardLogger) print(tag, format string, v ...interface{}) {
	l.out.Print(tag + prefix + fmt.Sprintf(format, v...))
}
