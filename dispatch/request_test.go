// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLayout(t *testing.T) {
	req := Request{Index: 0x1a0}
	req.SetHalves(0x11223344, 0x55667788)

	b, err := req.MarshalBinary()
	require.NoError(t, err)

	want := []byte{
		0xa0, 0x01, 0x00, 0x00, // index
		0x00, 0x00, 0x00, 0x00, // padding
		0x44, 0x33, 0x22, 0x11, // low
		0x88, 0x77, 0x66, 0x55, // high
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, uint32(0x11223344), req.Low())
	assert.Equal(t, uint32(0x55667788), req.High())
	assert.Equal(t, uint64(0x5566778811223344), uint64(req.Value))
}

func TestRequestKeepsPadding(t *testing.T) {
	in := []byte{
		0x10, 0x00, 0x00, 0x00,
		0xaa, 0xbb, 0xcc, 0xdd,
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
	}

	var req Request
	require.NoError(t, req.UnmarshalBinary(in))

	out, err := req.MarshalBinary()
	require.NoError(t, err)

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestRequestUnmarshalWrongSize(t *testing.T) {
	var req Request

	assert.ErrorIs(t, req.UnmarshalBinary(make([]byte, RequestSize-1)), ErrBoundaryViolation)
	assert.ErrorIs(t, req.UnmarshalBinary(make([]byte, RequestSize+1)), ErrBoundaryViolation)
}
