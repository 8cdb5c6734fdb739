// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sterror provides the error handling used in stmsr.
// The core part is the constructor function E().
package sterror

import (
	"errors"
)

// Op describes an operation, usually as the name of the method.
type Op string

// Scope defines the scope of error this is, mostly to identify
// the subsystem where the error occurred.
type Scope string

// Scopes of errors.
const (
	Register Scope = "Register"
	Dispatch Scope = "Dispatch"
	Endpoint Scope = "Endpoint"
	Opts     Scope = "Opts"
)

// Error provides structured and detailed context. However, some fields
// may be left unset.
//
// An Error value should be created using the E() function.
type Error struct {
	// Op is operation being executed while the error occurred.
	Op Op
	// Scope is the subsystem of stmsr causing the error.
	Scope Scope
	// Info provides further context to the error or holds the string
	// value of the triggering error if it is not wrapped.
	Info string
	// Err is the underlying wrapped error.
	Err error
}

const (
	colon  string = ": "
	hyphen string = " - "
)

// Error implements the error interface.
func (e Error) Error() string {
	var s string

	if e.Scope != "" {
		s += string(e.Scope)
	}

	switch {
	case e.Op != "" && e.Info != "":
		s += colon + string(e.Op) + hyphen + e.Info
	case e.Op != "":
		s += colon + string(e.Op)
	case e.Info != "":
		s += colon + e.Info
	default:
	}

	if e.Err != nil {
		s += colon + e.Err.Error()
	}

	return s
}

// Unwrap returns the wrapped error, so errors.Is and errors.As see through
// an Error.
func (e Error) Unwrap() error {
	return e.Err
}

// E returns an Error constructed from its arguments.
// There should be at least one argument, or E returns an unspecified error.
// The type of each argument determines its meaning.
// If more than one argument of a given type is presented,
// only the last one is recorded.
//
// The types are:
//
//	sterror.Op
//		The performed operation.
//	sterror.Scope
//		The subsystem where the error occurred.
//	error
//		The underlying error if it should be wrapped.
//	string
//		Treated as error message of an error that should
//		not be wrapped or as additional information to the
//		provided error.
//
// Further types will be ignored.
func E(args ...interface{}) Error {
	if len(args) == 0 {
		return Error{Info: "unspecified"}
	}

	var err = Error{}

	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			err.Op = arg
		case Scope:
			err.Scope = arg
		case error:
			err.Err = arg
		case string:
			err.Info = arg
		default:
		}
	}

	return err
}

// Equal returns true if the two provided Errors are equal. Wrapped errors
// are compared recursively when both are of type Error, otherwise with
// errors.Is.
func Equal(got, want Error) bool {
	if got.Scope != want.Scope || got.Op != want.Op || got.Info != want.Info {
		return false
	}

	var gotWrapped, wantWrapped Error

	gotOk := errors.As(got.Err, &gotWrapped)
	wantOk := errors.As(want.Err, &wantWrapped)

	if gotOk != wantOk {
		return false
	}

	if gotOk {
		return Equal(gotWrapped, wantWrapped)
	}

	return errors.Is(got.Err, want.Err)
}
