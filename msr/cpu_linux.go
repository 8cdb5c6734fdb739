// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package msr

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fearful-symmetry/gomsr"
	"golang.org/x/sys/unix"
	"system-transparency.org/stmsr/sterror"
	"system-transparency.org/stmsr/stlog"
)

// CPU accesses the registers of one logical CPU through the Linux msr
// driver. The driver executes RDMSR and WRMSR on that CPU and reports a
// general protection fault as EIO.
type CPU struct {
	n   int
	dev gomsr.MSRDev
}

// Open opens the msr device of cpu. pathFmt is the device path with a %d
// verb for the CPU number, usually DefaultPathFmt.
func Open(cpu int, pathFmt string) (*CPU, error) {
	const op = sterror.Op("Open")

	if pathFmt == "" {
		pathFmt = DefaultPathFmt
	}

	dev, err := gomsr.MSRWithLocation(cpu, pathFmt)
	if err != nil {
		return nil, sterror.E(op, sterror.Register, fmt.Errorf("%w: %v", ErrDevice, err), fmt.Sprintf(pathFmt, cpu))
	}

	stlog.Debug("Opened %s", fmt.Sprintf(pathFmt, cpu))

	return &CPU{n: cpu, dev: dev}, nil
}

// Close closes the underlying device.
func (c *CPU) Close() error {
	return c.dev.Close()
}

// ReadMSR implements Accessor.
func (c *CPU) ReadMSR(index uint32) (Value, error) {
	const op = sterror.Op("ReadMSR")

	v, err := c.dev.Read(int64(index))
	if err != nil {
		return 0, sterror.E(op, sterror.Register, c.classify(index, err))
	}

	return Value(v), nil
}

// WriteMSR implements Accessor.
func (c *CPU) WriteMSR(index uint32, low, high uint32) error {
	const op = sterror.Op("WriteMSR")

	if err := c.dev.Write(int64(index), uint64(FromHalves(low, high))); err != nil {
		return sterror.E(op, sterror.Register, c.classify(index, err))
	}

	return nil
}

// ReadTSC implements Accessor. The counter is sampled on c's CPU when the
// calling thread can be pinned to it, otherwise on whichever CPU runs the
// caller.
func (c *CPU) ReadTSC() Value {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var prev, set unix.CPUSet

	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return FromHalves(rdtsc())
	}

	set.Set(c.n)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return FromHalves(rdtsc())
	}

	//nolint:errcheck
	defer unix.SchedSetaffinity(0, &prev)

	return FromHalves(rdtsc())
}

func (c *CPU) classify(index uint32, err error) error {
	if errors.Is(err, unix.EIO) {
		return fmt.Errorf("%w: 0x%08x on cpu %d", ErrInvalidRegisterIndex, index, c.n)
	}

	return fmt.Errorf("%w: %v", ErrDevice, err)
}
