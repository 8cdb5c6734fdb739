// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"sync/atomic"

	"system-transparency.org/stmsr/msr"
)

// countingAccessor records how often the register primitives are reached.
type countingAccessor struct {
	msr.Accessor
	calls int64
}

func newCountingAccessor(regs map[uint32]msr.Value) *countingAccessor {
	return &countingAccessor{Accessor: msr.NewMemory(regs)}
}

func (c *countingAccessor) ReadMSR(index uint32) (msr.Value, error) {
	atomic.AddInt64(&c.calls, 1)

	return c.Accessor.ReadMSR(index)
}

func (c *countingAccessor) WriteMSR(index uint32, low, high uint32) error {
	atomic.AddInt64(&c.calls, 1)

	return c.Accessor.WriteMSR(index, low, high)
}

func (c *countingAccessor) ReadTSC() msr.Value {
	atomic.AddInt64(&c.calls, 1)

	return c.Accessor.ReadTSC()
}

func (c *countingAccessor) accesses() int64 {
	return atomic.LoadInt64(&c.calls)
}

func record(t interface{ Helper() }, index uint32, value uint64) []byte {
	t.Helper()

	req := Request{Index: index, Value: msr.Value(value)}
	b, _ := req.MarshalBinary()

	return b
}
