// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package msr provides the privileged register access primitives: reading
// and writing model specific registers and reading the time stamp counter.
package msr

import (
	"errors"

	"github.com/tklauser/numcpus"
)

var (
	// ErrInvalidRegisterIndex is returned when the processor refuses to
	// access a register index, because it is unsupported or protected.
	ErrInvalidRegisterIndex = errors.New("invalid register index")
	// ErrDevice reports a failure of the register device itself.
	ErrDevice = errors.New("msr device failure")
)

// DefaultPathFmt is the location of the Linux msr driver's device files.
const DefaultPathFmt = "/dev/cpu/%d/msr"

// Accessor is implemented by register backends.
//
// ReadMSR and WriteMSR never panic on a faulting index, they return an
// error wrapping ErrInvalidRegisterIndex instead. ReadTSC always succeeds.
type Accessor interface {
	ReadMSR(index uint32) (Value, error)
	WriteMSR(index uint32, low, high uint32) error
	ReadTSC() Value
}

// OnlineCPUs returns the number of online CPUs of the host. It is an upper
// bound for CPU numbers only while no CPU has been taken offline.
func OnlineCPUs() (int, error) {
	return numcpus.GetOnline()
}
