// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msr

import "fmt"

// Value is the 64-bit content of a model specific register or of the time
// stamp counter. The instructions accessing it split it into a low (EAX) and
// a high (EDX) double word.
type Value uint64

// FromHalves composes a Value from its low and high double word.
func FromHalves(low, high uint32) Value {
	return Value(uint64(low) | uint64(high)<<32)
}

// Halves returns the low and high double word of v.
func (v Value) Halves() (low, high uint32) {
	return v.Low(), v.High()
}

// Low returns the low double word of v.
func (v Value) Low() uint32 {
	return uint32(v & 0xffffffff)
}

// High returns the high double word of v.
func (v Value) High() uint32 {
	return uint32(v >> 32)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return fmt.Sprintf("0x%016x", uint64(v))
}
