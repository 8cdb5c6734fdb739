// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package endpoint exposes a dispatch.Dispatcher as the single control
// endpoint of the host: a Unix domain socket that unprivileged callers
// connect to.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"system-transparency.org/stmsr/dispatch"
	"system-transparency.org/stmsr/opts"
	"system-transparency.org/stmsr/sterror"
	"system-transparency.org/stmsr/stlog"
)

var (
	ErrRegistered   = errors.New("control endpoint already registered")
	ErrUnregistered = errors.New("control endpoint unregistered")
	ErrNotSocket    = errors.New("socket path is taken by a non-socket file")
)

// Endpoint is the handle of a registered control endpoint. It is created by
// Register and destroyed by Unregister.
type Endpoint struct {
	socketPath string
	maxRegion  int
	lock       *flock.Flock
	ln         *net.UnixListener

	mu       sync.Mutex
	closed   bool
	draining bool
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// Register claims the control endpoint described by o. It fails with
// ErrRegistered while another process holds it.
func Register(o *opts.Opts) (*Endpoint, error) {
	const op = sterror.Op("Register")

	lock := flock.New(o.LockPath)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, sterror.E(op, sterror.Endpoint, err, o.LockPath)
	}

	if !locked {
		return nil, sterror.E(op, sterror.Endpoint, ErrRegistered, o.LockPath)
	}

	if err := removeStale(o.SocketPath); err != nil {
		lock.Unlock() //nolint:errcheck

		return nil, sterror.E(op, sterror.Endpoint, err, o.SocketPath)
	}

	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: o.SocketPath, Net: "unix"})
	if err != nil {
		lock.Unlock() //nolint:errcheck

		return nil, sterror.E(op, sterror.Endpoint, err)
	}

	ln.SetUnlinkOnClose(false)

	if err := os.Chmod(o.SocketPath, os.FileMode(o.SocketMode)); err != nil {
		ln.Close()
		os.Remove(o.SocketPath)
		lock.Unlock() //nolint:errcheck

		return nil, sterror.E(op, sterror.Endpoint, err, "chmod socket")
	}

	stlog.Info("Registered control endpoint %s (mode %s)", o.SocketPath, o.SocketMode)

	return &Endpoint{
		socketPath: o.SocketPath,
		maxRegion:  o.MaxRegion,
		lock:       lock,
		ln:         ln,
		conns:      make(map[net.Conn]struct{}),
	}, nil
}

// removeStale deletes a socket left behind at path. Holding the lock, any
// existing socket is stale. Anything else at path is left alone.
func removeStale(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrNotSocket, fi.Mode())
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	return nil
}

// Addr returns the socket path.
func (e *Endpoint) Addr() string {
	return e.socketPath
}

// Serve accepts callers and runs their calls on d until ctx is done or the
// endpoint is unregistered. Calls of one connection run in order, different
// connections are served concurrently.
func (e *Endpoint) Serve(ctx context.Context, d *dispatch.Dispatcher) error {
	const op = sterror.Op("Serve")

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()

		return sterror.E(op, sterror.Endpoint, ErrUnregistered)
	}
	e.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			e.ln.Close()
			e.closeConns()
		case <-stop:
		}
	}()

	defer e.wg.Wait()

	for {
		conn, err := e.ln.AcceptUnix()
		if err != nil {
			if ctx.Err() != nil || e.isClosed() {
				return nil
			}

			e.closeConns()

			return sterror.E(op, sterror.Endpoint, err)
		}

		if !e.track(conn) {
			conn.Close()

			return nil
		}

		e.wg.Add(1)

		go func() {
			defer e.wg.Done()
			defer e.untrack(conn)

			e.handle(conn, d)
		}()
	}
}

func (e *Endpoint) handle(conn *net.UnixConn, d *dispatch.Dispatcher) {
	defer conn.Close()

	if pid, uid, ok := peerCred(conn); ok {
		stlog.Debug("Caller connected: pid %d uid %d", pid, uid)
	}

	for {
		h, err := readHeader(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !e.isClosed() {
				stlog.Warn("Read call: %v", err)
			}

			return
		}

		val, region, err := e.call(conn, h, d)
		if err != nil {
			stlog.Debug("Call %d failed: %v", h.word, err)
		}

		if region == nil && err == nil {
			return
		}

		if err := writeFrame(conn, header{word: statusOf(err), value: val}, region); err != nil {
			if !e.isClosed() {
				stlog.Warn("Write reply: %v", err)
			}

			return
		}
	}
}

// call reads the region of a call and dispatches it. A nil region with a
// nil error means the connection broke.
func (e *Endpoint) call(conn io.Reader, h header, d *dispatch.Dispatcher) (uint64, []byte, error) {
	if int64(h.regionLen) > int64(e.maxRegion) {
		if _, err := io.CopyN(io.Discard, conn, int64(h.regionLen)); err != nil {
			return 0, nil, nil
		}

		return 0, []byte{}, fmt.Errorf("%w: %d bytes, limit %d", ErrRegionTooLarge, h.regionLen, e.maxRegion)
	}

	region := make([]byte, h.regionLen)
	if _, err := io.ReadFull(conn, region); err != nil {
		return 0, nil, nil
	}

	val, err := d.Call(h.word, dispatch.NewRegion(region), dispatch.Addr(h.value))
	if err != nil {
		return 0, region, err
	}

	return val, region, nil
}

// Unregister closes the endpoint, removes its socket and releases the
// lock. It is safe to call more than once.
func (e *Endpoint) Unregister() error {
	const op = sterror.Op("Unregister")

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()

		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.ln.Close()
	e.closeConns()

	if err := os.Remove(e.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.lock.Unlock() //nolint:errcheck

		return sterror.E(op, sterror.Endpoint, err)
	}

	if err := e.lock.Unlock(); err != nil {
		return sterror.E(op, sterror.Endpoint, err)
	}

	stlog.Info("Unregistered control endpoint %s", e.socketPath)

	return nil
}

func (e *Endpoint) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed || e.draining
}

func (e *Endpoint) track(conn net.Conn) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.draining {
		return false
	}

	e.conns[conn] = struct{}{}

	return true
}

func (e *Endpoint) untrack(conn net.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.conns, conn)
}

func (e *Endpoint) closeConns() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.draining = true

	for conn := range e.conns {
		conn.Close()
	}
}
