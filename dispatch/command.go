// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"
)

// Command is one of the operations of the control endpoint.
type Command uint32

// Command codes as seen on the wire.
const (
	Read    Command = 1
	Write   Command = 2
	Stop    Command = 3
	ReadTSC Command = 4
)

// ErrUnsupportedCommand is returned for command codes outside the known set.
var ErrUnsupportedCommand = errors.New("operation not supported")

// ParseCommand converts a raw command code into a Command.
func ParseCommand(code uint32) (Command, error) {
	switch c := Command(code); c {
	case Read, Write, Stop, ReadTSC:
		return c, nil
	default:
		return 0, fmt.Errorf("%w: command %d", ErrUnsupportedCommand, code)
	}
}

// String implements fmt.Stringer.
func (c Command) String() string {
	switch c {
	case Read:
		return "read"
	case Write:
		return "write"
	case Stop:
		return "stop"
	case ReadTSC:
		return "rdtsc"
	default:
		return fmt.Sprintf("Command(%d)", uint32(c))
	}
}

// readsRegister reports whether c stores a result in the request.
func (c Command) readsRegister() bool {
	return c == Read || c == ReadTSC
}
