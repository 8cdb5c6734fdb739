// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msr

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestFromHalves(t *testing.T) {
	for _, tt := range []struct {
		low, high uint32
		want      Value
	}{
		{0, 0, 0},
		{1, 2, 0x0000000200000001},
		{math.MaxUint32, 0, 0x00000000ffffffff},
		{0, math.MaxUint32, 0xffffffff00000000},
		{math.MaxUint32, math.MaxUint32, math.MaxUint64},
		{0xdeadbeef, 0xcafebabe, 0xcafebabedeadbeef},
	} {
		got := FromHalves(tt.low, tt.high)
		assert.Equal(t, tt.want, got)

		low, high := got.Halves()
		assert.Equal(t, tt.low, low)
		assert.Equal(t, tt.high, high)
	}
}

func TestCompositionLaw(t *testing.T) {
	roundTrip := func(low, high uint32) bool {
		l, h := FromHalves(low, high).Halves()

		return l == low && h == high
	}
	if err := quick.Check(roundTrip, nil); err != nil {
		t.Error(err)
	}

	decompose := func(v uint64) bool {
		return FromHalves(Value(v).Halves()) == Value(v)
	}
	if err := quick.Check(decompose, nil); err != nil {
		t.Error(err)
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "0x0000000200000001", FromHalves(1, 2).String())
}
