// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sterror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	emptyOp        Op    = ""
	filledOpOne    Op    = "ReadMSR"
	filledOpTwo    Op    = "another operation"
	emptyScope     Scope = ""
	filledScopeOne Scope = Register
	filledScopeTwo Scope = Endpoint
	emptyInfo            = ""
	filledInfo           = "a lot of info"
)

var (
	errEmpty             error
	errFilled            = fmt.Errorf("this is an error")
	errErrorEmpty        = Error{Info: "unspecified"}
	errErrorPartialOne   = Error{emptyOp, filledScopeOne, filledInfo, errEmpty}
	errErrorPartialThree = Error{filledOpTwo, emptyScope, emptyInfo, errEmpty}
	errErrorFilledOne    = Error{filledOpOne, filledScopeOne, filledInfo, errFilled}
	errErrorFilledTwo    = Error{filledOpTwo, filledScopeTwo, filledInfo, errFilled}
	errErrorWrapped      = Error{emptyOp, filledScopeOne, emptyInfo, errErrorFilledOne}
)

func TestNewError(t *testing.T) {
	cases := []struct {
		got, want Error
	}{
		{E(), errErrorEmpty},
		{E(filledScopeOne, filledInfo), errErrorPartialOne},
		{E(filledOpOne, filledScopeOne, filledInfo, errFilled), errErrorFilledOne},
		{E(filledOpTwo), errErrorPartialThree},
		{E(filledScopeOne, errErrorFilledOne), errErrorWrapped},
		{E(filledOpTwo, filledScopeTwo, filledInfo, errFilled, 42), errErrorFilledTwo},
	}

	for _, c := range cases {
		assert.Equal(t, c.want.Error(), c.got.Error())
		assert.True(t, Equal(c.got, c.want), "Equal(%v, %v)", c.got, c.want)
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "Register: ReadMSR - a lot of info: this is an error", errErrorFilledOne.Error())
	assert.Equal(t, ": another operation", errErrorPartialThree.Error())
}

func TestNotEqual(t *testing.T) {
	assert.False(t, Equal(errErrorFilledOne, errErrorFilledTwo))
	assert.False(t, Equal(errErrorWrapped, errErrorPartialOne))
	assert.False(t, Equal(E(filledScopeOne, errErrorFilledOne), E(filledScopeOne, errErrorFilledTwo)))
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := E(filledOpOne, filledScopeOne, fmt.Errorf("%w: detail", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	var target Error
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &target))
	assert.Equal(t, filledOpOne, target.Op)
}
