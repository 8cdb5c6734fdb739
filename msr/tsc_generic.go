// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64

package msr

import "time"

//nolint:gochecknoglobals
var epoch = time.Now()

// rdtsc falls back to the monotonic clock in nanoseconds on platforms
// without a time stamp counter instruction.
func rdtsc() (low, high uint32) {
	return Value(time.Since(epoch)).Halves()
}
