// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package msr

import (
	"errors"
	"fmt"

	"system-transparency.org/stmsr/sterror"
)

// CPU is only available on Linux.
type CPU struct{}

// Open fails on platforms without the Linux msr driver.
func Open(cpu int, pathFmt string) (*CPU, error) {
	return nil, sterror.E(sterror.Op("Open"), sterror.Register, fmt.Errorf("%w: %v", ErrDevice, errors.New("msr driver requires linux")))
}

// Close implements io.Closer.
func (c *CPU) Close() error { return nil }

// ReadMSR implements Accessor.
func (c *CPU) ReadMSR(index uint32) (Value, error) { return 0, ErrDevice }

// WriteMSR implements Accessor.
func (c *CPU) WriteMSR(index uint32, low, high uint32) error { return ErrDevice }

// ReadTSC implements Accessor.
func (c *CPU) ReadTSC() Value { return FromHalves(rdtsc()) }
