// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msr

import (
	"fmt"
	"sync"
	"sync/atomic"

	"system-transparency.org/stmsr/sterror"
)

// Memory is an in-memory register store. Only the indexes it was created
// with exist; accessing any other index fails like a faulting RDMSR/WRMSR.
// Its time stamp counter increases by one on every read.
type Memory struct {
	mu   sync.RWMutex
	regs map[uint32]Value
	tsc  uint64
}

// NewMemory returns a Memory holding a copy of regs.
func NewMemory(regs map[uint32]Value) *Memory {
	m := &Memory{regs: make(map[uint32]Value, len(regs))}
	for idx, v := range regs {
		m.regs[idx] = v
	}

	return m
}

// NewSimulated returns a Memory populated with a handful of architectural
// registers at plausible reset values.
func NewSimulated() *Memory {
	return NewMemory(map[uint32]Value{
		0x10:  0,          // IA32_TIME_STAMP_COUNTER
		0x1b:  0xfee00900, // IA32_APIC_BASE
		0xe7:  0,          // IA32_MPERF
		0xe8:  0,          // IA32_APERF
		0x19c: 0x88000000, // IA32_THERM_STATUS
		0x1a0: 0x850089,   // IA32_MISC_ENABLE
	})
}

// ReadMSR implements Accessor.
func (m *Memory) ReadMSR(index uint32) (Value, error) {
	const op = sterror.Op("ReadMSR")

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.regs[index]
	if !ok {
		return 0, sterror.E(op, sterror.Register, fmt.Errorf("%w: 0x%08x", ErrInvalidRegisterIndex, index))
	}

	return v, nil
}

// WriteMSR implements Accessor.
func (m *Memory) WriteMSR(index uint32, low, high uint32) error {
	const op = sterror.Op("WriteMSR")

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.regs[index]; !ok {
		return sterror.E(op, sterror.Register, fmt.Errorf("%w: 0x%08x", ErrInvalidRegisterIndex, index))
	}

	m.regs[index] = FromHalves(low, high)

	return nil
}

// ReadTSC implements Accessor.
func (m *Memory) ReadTSC() Value {
	return Value(atomic.AddUint64(&m.tsc, 1))
}
