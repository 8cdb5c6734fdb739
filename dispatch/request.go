// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/binary"

	"system-transparency.org/stmsr/msr"
)

// Layout of a request record in caller memory. The value field at offset 8
// is also addressed as its low and high double word.
const (
	RequestSize  = 16
	RequestAlign = 8

	indexOffset = 0
	padOffset   = 4
	valueOffset = 8
)

// Request is the register request record exchanged with the caller.
type Request struct {
	// Index selects the register.
	Index uint32
	// Value holds the register content. Its halves are the low and high
	// double word of the record.
	Value msr.Value

	// pad keeps the caller's padding bytes intact on copy out.
	pad uint32
}

// Low returns the low double word of the value.
func (r *Request) Low() uint32 {
	return r.Value.Low()
}

// High returns the high double word of the value.
func (r *Request) High() uint32 {
	return r.Value.High()
}

// SetHalves sets the value from its low and high double word.
func (r *Request) SetHalves(low, high uint32) {
	r.Value = msr.FromHalves(low, high)
}

// MarshalBinary encodes r in the record layout.
func (r *Request) MarshalBinary() ([]byte, error) {
	b := make([]byte, RequestSize)
	r.put(b)

	return b, nil
}

// UnmarshalBinary decodes a record. b must be exactly RequestSize long.
func (r *Request) UnmarshalBinary(b []byte) error {
	if len(b) != RequestSize {
		return ErrBoundaryViolation
	}

	r.Index = binary.LittleEndian.Uint32(b[indexOffset:])
	r.pad = binary.LittleEndian.Uint32(b[padOffset:])
	r.Value = msr.Value(binary.LittleEndian.Uint64(b[valueOffset:]))

	return nil
}

func (r *Request) put(b []byte) {
	binary.LittleEndian.PutUint32(b[indexOffset:], r.Index)
	binary.LittleEndian.PutUint32(b[padOffset:], r.pad)
	binary.LittleEndian.PutUint64(b[valueOffset:], uint64(r.Value))
}
