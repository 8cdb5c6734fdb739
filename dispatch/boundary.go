// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"
)

// ErrBoundaryViolation is returned when a caller address does not denote an
// accessible, aligned request record inside the caller's granted memory.
var ErrBoundaryViolation = errors.New("bad address")

// Addr is an address in the caller's memory.
type Addr uint64

// IO copies between caller memory and dispatcher owned buffers.
type IO interface {
	// CopyIn copies len(dst) bytes at addr into dst.
	CopyIn(addr Addr, dst []byte) error
	// CopyOut copies src to addr.
	CopyOut(addr Addr, src []byte) error
}

// Region is caller memory granted as a byte slice starting at Base.
type Region struct {
	Base Addr
	Data []byte
}

// NewRegion returns a Region mapping data at address 0.
func NewRegion(data []byte) *Region {
	return &Region{Data: data}
}

func (r *Region) bounds(addr Addr, n int) (int, error) {
	if addr < r.Base {
		return 0, fmt.Errorf("%w: 0x%x below region base 0x%x", ErrBoundaryViolation, uint64(addr), uint64(r.Base))
	}

	off := uint64(addr - r.Base)
	end := off + uint64(n)

	if end < off || end > uint64(len(r.Data)) {
		return 0, fmt.Errorf("%w: [0x%x, +%d) outside region of %d bytes", ErrBoundaryViolation, uint64(addr), n, len(r.Data))
	}

	return int(off), nil
}

// CopyIn implements IO.
func (r *Region) CopyIn(addr Addr, dst []byte) error {
	off, err := r.bounds(addr, len(dst))
	if err != nil {
		return err
	}

	copy(dst, r.Data[off:])

	return nil
}

// CopyOut implements IO.
func (r *Region) CopyOut(addr Addr, src []byte) error {
	off, err := r.bounds(addr, len(src))
	if err != nil {
		return err
	}

	copy(r.Data[off:], src)

	return nil
}

// CopyInRequest reads the request record at addr.
func CopyInRequest(mem IO, addr Addr) (Request, error) {
	var req Request

	if addr%RequestAlign != 0 {
		return req, fmt.Errorf("%w: 0x%x not %d byte aligned", ErrBoundaryViolation, uint64(addr), RequestAlign)
	}

	buf := make([]byte, RequestSize)
	if err := mem.CopyIn(addr, buf); err != nil {
		return req, err
	}

	if err := req.UnmarshalBinary(buf); err != nil {
		return req, err
	}

	return req, nil
}

// CopyOutRequest writes req to the record at addr.
func CopyOutRequest(mem IO, addr Addr, req *Request) error {
	if addr%RequestAlign != 0 {
		return fmt.Errorf("%w: 0x%x not %d byte aligned", ErrBoundaryViolation, uint64(addr), RequestAlign)
	}

	buf, err := req.MarshalBinary()
	if err != nil {
		return err
	}

	return mem.CopyOut(addr, buf)
}
