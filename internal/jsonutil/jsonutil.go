// Copyright 2021 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonutil holds helpers for strict JSON decoding.
package jsonutil

import (
	"reflect"
	"sort"
	"strings"
)

// Tags returns the json keys of struct or struct pointer s. Options after
// the key name and ignored fields ("-") are dropped.
func Tags(s interface{}) []string {
	tags := make([]string, 0)

	typ := reflect.TypeOf(s)
	if typ == nil {
		return tags
	}

	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return tags
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tag := field.Tag.Get("json")
		if idx := strings.IndexByte(tag, ','); idx >= 0 {
			tag = tag[:idx]
		}

		if tag != "" && tag != "-" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// UnknownKeys returns the keys of m that are not json keys of s, sorted.
func UnknownKeys(s interface{}, m map[string]interface{}) []string {
	known := make(map[string]bool)
	for _, tag := range Tags(s) {
		known[tag] = true
	}

	unknown := make([]string, 0)

	for key := range m {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}

	sort.Strings(unknown)

	return unknown
}
