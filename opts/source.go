// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"system-transparency.org/stmsr/internal/jsonutil"
	"system-transparency.org/stmsr/sterror"
)

// WithJSON loads the keys present in src on top of the current values.
// Unknown keys are not allowed.
func WithJSON(src io.Reader) Loader {
	return func(o *Opts) error {
		const op = sterror.Op("WithJSON")

		if src == nil {
			return sterror.E(op, sterror.Opts, ErrNoSource)
		}

		data, err := io.ReadAll(src)
		if err != nil {
			return sterror.E(op, sterror.Opts, err)
		}

		var keys map[string]interface{}
		if err := json.Unmarshal(data, &keys); err != nil {
			return sterror.E(op, sterror.Opts, err)
		}

		if unknown := jsonutil.UnknownKeys(o, keys); len(unknown) > 0 {
			return sterror.E(op, sterror.Opts, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(unknown, ", ")))
		}

		next := *o
		if err := json.Unmarshal(data, &next); err != nil {
			return sterror.E(op, sterror.Opts, err)
		}

		if next.Version != OptsVersion {
			return sterror.E(op, sterror.Opts, fmt.Errorf("%w: %d", ErrVersion, next.Version))
		}

		*o = next

		return nil
	}
}

// WithYAML loads the keys present in src on top of the current values.
// Unknown keys are not allowed.
func WithYAML(src io.Reader) Loader {
	return func(o *Opts) error {
		const op = sterror.Op("WithYAML")

		if src == nil {
			return sterror.E(op, sterror.Opts, ErrNoSource)
		}

		next := *o

		d := yaml.NewDecoder(src)
		d.KnownFields(true)

		if err := d.Decode(&next); err != nil && err != io.EOF {
			return sterror.E(op, sterror.Opts, err)
		}

		if next.Version != OptsVersion {
			return sterror.E(op, sterror.Opts, fmt.Errorf("%w: %d", ErrVersion, next.Version))
		}

		*o = next

		return nil
	}
}

// WithFile loads a JSON or YAML file, chosen by the file extension.
func WithFile(name string) Loader {
	return func(o *Opts) error {
		const op = sterror.Op("WithFile")

		var load func(io.Reader) Loader

		switch strings.ToLower(filepath.Ext(name)) {
		case ".json":
			load = WithJSON
		case ".yaml", ".yml":
			load = WithYAML
		default:
			return sterror.E(op, sterror.Opts, ErrUnknownFormat, name)
		}

		f, err := os.Open(name)
		if err != nil {
			return sterror.E(op, sterror.Opts, err)
		}
		defer f.Close()

		return load(f)(o)
	}
}
