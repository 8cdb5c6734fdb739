// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import (
	"fmt"
	"path/filepath"
	"strings"

	"system-transparency.org/stmsr/dispatch"
	"system-transparency.org/stmsr/msr"
)

const (
	ErrMissingSocketPath = InvalidError("socket path must be set")
	ErrRelativeSocket    = InvalidError("socket path must be absolute")
	ErrRelativeLock      = InvalidError("lock path must be absolute")
	ErrLockIsSocket      = InvalidError("lock path must differ from socket path")
	ErrInvalidSocketMode = InvalidError("socket mode must be octal permission bits")
	ErrMissingBackend    = InvalidError("backend must be set")
	ErrUnknownBackend    = InvalidError("unknown backend")
	ErrInvalidCPU        = InvalidError("cpu number beyond online cpu count")
	ErrInvalidMSRPath    = InvalidError("msr path must contain exactly one %d")
	ErrInvalidMaxRegion  = InvalidError("max region out of range")
)

// onlineCPUs is replaced in tests.
//
//nolint:gochecknoglobals
var onlineCPUs = msr.OnlineCPUs

// Validater is the interface that wraps the Validate method.
//
// Validate takes Opts and performs validation on it. If Opts is not
// valid an InvalidError is returned.
type Validater interface {
	Validate(*Opts) error
}

type validFunc func(*Opts) error

// ValidationSet is a collection of validation functions.
type ValidationSet []validFunc

// Validate implements Validater.
func (v *ValidationSet) Validate(opts *Opts) error {
	for _, f := range *v {
		if err := f(opts); err != nil {
			return err
		}
	}

	return nil
}

// Validation is the Validater for all fields of Opts.
func Validation() *ValidationSet {
	return &ValidationSet{
		checkSocketPath,
		checkLockPath,
		checkSocketMode,
		checkBackend,
		checkCPU,
		checkMSRPath,
		checkMaxRegion,
	}
}

func checkSocketPath(opts *Opts) error {
	if opts.SocketPath == "" {
		return ErrMissingSocketPath
	}

	if !filepath.IsAbs(opts.SocketPath) {
		return ErrRelativeSocket
	}

	return nil
}

func checkLockPath(opts *Opts) error {
	if !filepath.IsAbs(opts.LockPath) {
		return ErrRelativeLock
	}

	if filepath.Clean(opts.LockPath) == filepath.Clean(opts.SocketPath) {
		return ErrLockIsSocket
	}

	return nil
}

func checkSocketMode(opts *Opts) error {
	if opts.SocketMode > fileModePermissionsLimit {
		return ErrInvalidSocketMode
	}

	return nil
}

func checkBackend(opts *Opts) error {
	switch opts.Backend {
	case MSRBackend, MemoryBackend:
		return nil
	case BackendUnset:
		return ErrMissingBackend
	default:
		return ErrUnknownBackend
	}
}

// checkCPU bounds the CPU number by the count of online CPUs. It does not
// prove the CPU is online when CPUs are numbered sparsely, msr.Open fails
// for those.
func checkCPU(opts *Opts) error {
	if opts.Backend != MSRBackend {
		return nil
	}

	n, err := onlineCPUs()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCPU, err)
	}

	if opts.CPU < 0 || opts.CPU >= n {
		return fmt.Errorf("%w: cpu %d, %d online", ErrInvalidCPU, opts.CPU, n)
	}

	return nil
}

func checkMSRPath(opts *Opts) error {
	if opts.Backend != MSRBackend {
		return nil
	}

	if strings.Count(opts.MSRPath, "%") != 1 || !strings.Contains(opts.MSRPath, "%d") {
		return ErrInvalidMSRPath
	}

	return nil
}

func checkMaxRegion(opts *Opts) error {
	if opts.MaxRegion < dispatch.RequestSize || opts.MaxRegion > maxRegionLimit {
		return ErrInvalidMaxRegion
	}

	return nil
}
