// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tagged struct {
	A int    `json:"a"`
	B string `json:"b,omitempty"`
	C bool   `json:"-"`
	D int
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Tags(tagged{}))
	assert.Equal(t, []string{"a", "b"}, Tags(&tagged{}))
	assert.Empty(t, Tags(42))
	assert.Empty(t, Tags(nil))
}

func TestUnknownKeys(t *testing.T) {
	got := UnknownKeys(&tagged{}, map[string]interface{}{"a": 1, "D": 2})
	assert.Equal(t, []string{"D"}, got)

	got = UnknownKeys(&tagged{}, map[string]interface{}{"z": 1, "a": 1, "m": 2, "D": 3, "c": 4})
	assert.Equal(t, []string{"D", "c", "m", "z"}, got)

	assert.Empty(t, UnknownKeys(&tagged{}, map[string]interface{}{"a": 1, "b": "x"}))
}
