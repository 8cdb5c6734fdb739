// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stlog

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/u-root/u-root/pkg/ulog"
)

type kernelLogger struct {
	out   *ulog.KLog
	level int32
}

var errInitKlog = errors.New("init klog failed")

func newKernelLogger() (*kernelLogger, error) {
	klog := ulog.KernelLog
	klog.SetLogLevel(ulog.KLogNotice)

	if err := klog.SetConsoleLogLevel(ulog.KLogInfo); err != nil {
		return nil, fmt.Errorf("%w: %v", errInitKlog, err)
	}

	return &kernelLogger{
		out:   klog,
		level: int32(InfoLevel),
	}, nil
}

func (l *kernelLogger) setLevel(level LogLevel) {
	atomic.StoreInt32(&l.level, int32(level))
}

func (l *kernelLogger) logLevel() LogLevel {
	return LogLevel(atomic.LoadInt32(&l.level))
}

func (l *kernelLogger) print(tag, format string, v ...interface{}) {
	l.out.Print(tag + prefix + fmt.Sprintf(format, v...))
}
