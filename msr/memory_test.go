// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msr

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadAfterWrite(t *testing.T) {
	m := NewMemory(map[uint32]Value{0x1a0: 0, 0x10: 0})

	for _, tt := range []struct {
		index     uint32
		low, high uint32
	}{
		{0x1a0, 1, 2},
		{0x1a0, 0xffffffff, 0},
		{0x10, 0, 0xffffffff},
	} {
		require.NoError(t, m.WriteMSR(tt.index, tt.low, tt.high))

		got, err := m.ReadMSR(tt.index)
		require.NoError(t, err)
		assert.Equal(t, FromHalves(tt.low, tt.high), got)
	}
}

func TestMemoryInvalidIndex(t *testing.T) {
	m := NewMemory(nil)

	_, err := m.ReadMSR(0xc0000080)
	assert.True(t, errors.Is(err, ErrInvalidRegisterIndex), "ReadMSR err = %v", err)

	err = m.WriteMSR(0xc0000080, 1, 0)
	assert.True(t, errors.Is(err, ErrInvalidRegisterIndex), "WriteMSR err = %v", err)
}

func TestMemoryCopiesInitialRegisters(t *testing.T) {
	regs := map[uint32]Value{0x1a0: 7}
	m := NewMemory(regs)

	regs[0x1a0] = 8
	regs[0x1b] = 1

	got, err := m.ReadMSR(0x1a0)
	require.NoError(t, err)
	assert.Equal(t, Value(7), got)

	_, err = m.ReadMSR(0x1b)
	assert.Error(t, err)
}

func TestMemoryTSCIncreases(t *testing.T) {
	m := NewSimulated()

	const (
		callers = 8
		reads   = 100
	)

	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			last := m.ReadTSC()
			for j := 0; j < reads; j++ {
				v := m.ReadTSC()
				assert.Greater(t, uint64(v), uint64(last))
				last = v
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, Value(callers*(reads+1)+1), m.ReadTSC())
}

func TestTracePassesThrough(t *testing.T) {
	m := NewMemory(map[uint32]Value{0x1a0: FromHalves(1, 2)})
	a := Trace(m)

	assert.Equal(t, a, Trace(a), "Trace must not wrap twice")

	v, err := a.ReadMSR(0x1a0)
	require.NoError(t, err)
	assert.Equal(t, Value(0x0000000200000001), v)

	require.NoError(t, a.WriteMSR(0x1a0, 3, 4))
	v, err = m.ReadMSR(0x1a0)
	require.NoError(t, err)
	assert.Equal(t, FromHalves(3, 4), v)

	_, err = a.ReadMSR(0x1b)
	assert.True(t, errors.Is(err, ErrInvalidRegisterIndex))

	assert.Equal(t, Value(1), a.ReadTSC())
}
