// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dispatch implements the command dispatcher of the control
// endpoint. It validates the command, copies the request record in from
// caller memory, runs the register primitive and copies the result back.
package dispatch

import (
	"system-transparency.org/stmsr/msr"
	"system-transparency.org/stmsr/sterror"
	"system-transparency.org/stmsr/stlog"
)

// Dispatcher routes commands to a register Accessor. It holds no state of
// its own and is safe for concurrent use if the Accessor is.
type Dispatcher struct {
	regs msr.Accessor
}

// New returns a Dispatcher using regs.
func New(regs msr.Accessor) *Dispatcher {
	return &Dispatcher{regs: regs}
}

// Dispatch executes cmd on req and returns the request's value afterwards.
//
// Read and ReadTSC store their result in req. Write and Stop leave req
// untouched and return whatever req.Value held before the call. On error
// req is not modified.
func (d *Dispatcher) Dispatch(cmd Command, req *Request) (uint64, error) {
	const op = sterror.Op("Dispatch")

	stlog.Debug("Received %s command for MSR 0x%08x", cmd, req.Index)

	switch cmd {
	case Read:
		v, err := d.regs.ReadMSR(req.Index)
		if err != nil {
			return 0, sterror.E(op, sterror.Dispatch, err, cmd.String())
		}

		req.Value = v
	case Write:
		if err := d.regs.WriteMSR(req.Index, req.Low(), req.High()); err != nil {
			return 0, sterror.E(op, sterror.Dispatch, err, cmd.String())
		}
	case Stop:
	case ReadTSC:
		req.Value = d.regs.ReadTSC()
	default:
		return 0, sterror.E(op, sterror.Dispatch, ErrUnsupportedCommand, cmd.String())
	}

	return uint64(req.Value), nil
}

// Call is the multiplexed endpoint operation. It parses the raw command
// code, copies the request record at addr out of mem, dispatches it and,
// for read type commands, copies the record back. It returns the record's
// value after the operation.
//
// An unsupported code or a bad address fails before any register access.
func (d *Dispatcher) Call(code uint32, mem IO, addr Addr) (uint64, error) {
	const op = sterror.Op("Call")

	cmd, err := ParseCommand(code)
	if err != nil {
		stlog.Debug("Rejected command code %d", code)

		return 0, sterror.E(op, sterror.Dispatch, err)
	}

	req, err := CopyInRequest(mem, addr)
	if err != nil {
		return 0, sterror.E(op, sterror.Dispatch, err, "copy in")
	}

	val, err := d.Dispatch(cmd, &req)
	if err != nil {
		return 0, err
	}

	if cmd.readsRegister() {
		if err := CopyOutRequest(mem, addr, &req); err != nil {
			return 0, sterror.E(op, sterror.Dispatch, err, "copy out")
		}
	}

	return val, nil
}
