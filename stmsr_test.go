// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"system-transparency.org/stmsr/endpoint"
	"system-transparency.org/stmsr/msr"
	"system-transparency.org/stmsr/opts"
)

func TestFlagsLoaders(t *testing.T) {
	f, err := parseFlags(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-backend", "memory", "-socket", "/tmp/a.sock"})
	require.NoError(t, err)

	loaders, err := f.loaders()
	require.NoError(t, err)

	o, err := opts.NewOpts(loaders...)
	require.NoError(t, err)
	assert.Equal(t, opts.MemoryBackend, o.Backend)
	assert.Equal(t, "/tmp/a.sock", o.SocketPath)
	assert.Equal(t, opts.DefaultLockPath, o.LockPath)

	f, err = parseFlags(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-backend", "ring0"})
	require.NoError(t, err)

	_, err = f.loaders()
	assert.True(t, errors.Is(err, opts.ErrUnknownBackend))
}

func TestRunServesSimulatedRegisters(t *testing.T) {
	dir, err := os.MkdirTemp("", "stmsr")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	config := filepath.Join(dir, "stmsr.json")
	cfg := fmt.Sprintf(`{"socket_path": %q, "lock_path": %q, "backend": "memory"}`, socket, filepath.Join(dir, "s.lock"))
	require.NoError(t, os.WriteFile(config, []byte(cfg), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- run(ctx, []string{"-config", config, "-loglevel", "debug"}) }()

	var c *endpoint.Client

	require.Eventually(t, func() bool {
		c, err = endpoint.Dial(socket)

		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	v, err := c.ReadMSR(0x1a0)
	require.NoError(t, err)
	assert.Equal(t, msr.Value(0x850089), v)

	_, err = c.ReadMSR(0xc0000080)
	assert.True(t, errors.Is(err, msr.ErrInvalidRegisterIndex))

	c.Close()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}

	_, err = os.Stat(socket)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunRejectsBadConfig(t *testing.T) {
	err := run(context.Background(), []string{"-config", "/nonexistent/stmsr.json"})
	assert.True(t, errors.Is(err, os.ErrNotExist), "err = %v", err)
}
