// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package msr

// rdtsc executes RDTSC and returns EAX and EDX. Implemented in tsc_amd64.s.
//
//go:noescape
func rdtsc() (low, high uint32)
