// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

// Error reports problems while loading configuration data.
type Error string

// Error implements error interface.
func (e Error) Error() string {
	return string(e)
}

// InvalidError reports invalid data of Opts.
type InvalidError string

// Error implements error interface.
func (e InvalidError) Error() string {
	return string(e)
}

const (
	ErrNoSource      = Error("no source provided")
	ErrUnknownKey    = Error("unknown configuration key")
	ErrUnknownFormat = Error("unknown configuration file format")
	ErrVersion       = Error("unsupported configuration version")
)
