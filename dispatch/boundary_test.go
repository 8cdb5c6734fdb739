// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionBounds(t *testing.T) {
	r := &Region{Base: 0x1000, Data: make([]byte, 32)}

	for _, tt := range []struct {
		name string
		addr Addr
		n    int
		ok   bool
	}{
		{"start", 0x1000, 16, true},
		{"end", 0x1010, 16, true},
		{"whole", 0x1000, 32, true},
		{"below base", 0x0ff8, 16, false},
		{"crosses end", 0x1018, 16, false},
		{"past end", 0x1020, 1, false},
		{"overflow", math.MaxUint64 - 7, 16, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := r.CopyIn(tt.addr, make([]byte, tt.n))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBoundaryViolation)
			}

			err = r.CopyOut(tt.addr, make([]byte, tt.n))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBoundaryViolation)
			}
		})
	}
}

func TestCopyInRequestIsACopy(t *testing.T) {
	data := record(t, 0x1a0, 7)
	r := NewRegion(data)

	req, err := CopyInRequest(r, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1a0), req.Index)

	// Later changes to caller memory must not reach the copied record.
	data[0] = 0xff
	assert.Equal(t, uint32(0x1a0), req.Index)
}

func TestCopyRequestAlignment(t *testing.T) {
	r := NewRegion(make([]byte, 64))

	_, err := CopyInRequest(r, 4)
	assert.ErrorIs(t, err, ErrBoundaryViolation)

	err = CopyOutRequest(r, 12, &Request{})
	assert.ErrorIs(t, err, ErrBoundaryViolation)

	_, err = CopyInRequest(r, 8)
	assert.NoError(t, err)
}

func TestCopyOutRequest(t *testing.T) {
	r := NewRegion(make([]byte, 2*RequestSize))

	req := Request{Index: 0x10}
	req.SetHalves(1, 2)
	require.NoError(t, CopyOutRequest(r, RequestSize, &req))

	got, err := CopyInRequest(r, RequestSize)
	require.NoError(t, err)
	assert.Equal(t, req, got)
	assert.Equal(t, make([]byte, RequestSize), r.Data[:RequestSize])
}
