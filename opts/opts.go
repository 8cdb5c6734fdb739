// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opts holds the configuration of the stmsr daemon.
package opts

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OptsVersion is the Version of Opts. It can be used for validation.
const OptsVersion int = 1

// Defaults.
const (
	DefaultSocketPath        = "/run/stmsr.sock"
	DefaultLockPath          = "/run/stmsr.lock"
	DefaultSocketMode        = FileMode(0o666)
	DefaultMSRPath           = "/dev/cpu/%d/msr"
	DefaultMaxRegion         = 4096
	DefaultBackend           = MSRBackend
	DefaultCPU               = 0
	DefaultVersion           = OptsVersion
	maxRegionLimit           = 1 << 20
	fileModePermissionsLimit = 0o777
)

// Loader fills particular fields of Opts depending on its source.
type Loader func(*Opts) error

// Backend selects where register accesses go.
type Backend int

const (
	BackendUnset Backend = iota
	MSRBackend
	MemoryBackend
)

//nolint:gochecknoglobals
var backendNames = map[string]Backend{
	"msr":    MSRBackend,
	"memory": MemoryBackend,
}

// String implements fmt.Stringer.
func (b Backend) String() string {
	switch b {
	case MSRBackend:
		return "msr"
	case MemoryBackend:
		return "memory"
	default:
		return "unset"
	}
}

// ParseBackend returns the Backend named s.
func ParseBackend(s string) (Backend, error) {
	b, ok := backendNames[s]
	if !ok {
		return BackendUnset, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}

	return b, nil
}

// MarshalJSON implements json.Marshaler.
func (b Backend) MarshalJSON() ([]byte, error) {
	if b == BackendUnset {
		return []byte("null"), nil
	}

	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Backend) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = BackendUnset

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	backend, ok := backendNames[s]
	if !ok {
		return &json.UnmarshalTypeError{
			Value: fmt.Sprintf("string %q", s),
			Type:  reflect.TypeOf(b),
		}
	}

	*b = backend

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Backend) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	backend, err := ParseBackend(s)
	if err != nil {
		return err
	}

	*b = backend

	return nil
}

// FileMode holds permission bits. It is encoded as an octal string.
type FileMode uint32

// String implements fmt.Stringer.
func (m FileMode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

func parseFileMode(s string) (FileMode, error) {
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSocketMode, s)
	}

	return FileMode(m), nil
}

// MarshalJSON implements json.Marshaler.
func (m FileMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *FileMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	mode, err := parseFileMode(s)
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *FileMode) UnmarshalYAML(value *yaml.Node) error {
	mode, err := parseFileMode(value.Value)
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// Opts controls the operation of stmsr.
type Opts struct {
	Version    int      `json:"version" yaml:"version"`
	SocketPath string   `json:"socket_path" yaml:"socket_path"`
	LockPath   string   `json:"lock_path" yaml:"lock_path"`
	SocketMode FileMode `json:"socket_mode" yaml:"socket_mode"`
	Backend    Backend  `json:"backend" yaml:"backend"`
	CPU        int      `json:"cpu" yaml:"cpu"`
	MSRPath    string   `json:"msr_path" yaml:"msr_path"`
	MaxRegion  int      `json:"max_region" yaml:"max_region"`
}

// NewOpts returns a new Opts initialized by the provided Loaders and
// validated afterwards.
func NewOpts(loaders ...Loader) (*Opts, error) {
	opts := &Opts{Version: OptsVersion}

	for _, l := range loaders {
		if err := l(opts); err != nil {
			return nil, err
		}
	}

	if err := Validation().Validate(opts); err != nil {
		return nil, err
	}

	return opts, nil
}

// WithDefaults sets every field to its default.
func WithDefaults() Loader {
	return func(o *Opts) error {
		*o = Opts{
			Version:    DefaultVersion,
			SocketPath: DefaultSocketPath,
			LockPath:   DefaultLockPath,
			SocketMode: DefaultSocketMode,
			Backend:    DefaultBackend,
			CPU:        DefaultCPU,
			MSRPath:    DefaultMSRPath,
			MaxRegion:  DefaultMaxRegion,
		}

		return nil
	}
}

// WithBackend overrides the backend.
func WithBackend(b Backend) Loader {
	return func(o *Opts) error {
		o.Backend = b

		return nil
	}
}

// WithSocketPath overrides the socket path.
func WithSocketPath(path string) Loader {
	return func(o *Opts) error {
		o.SocketPath = path

		return nil
	}
}
