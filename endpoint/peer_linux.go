// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package endpoint

import (
	"net"

	"golang.org/x/sys/unix"
)

// peerCred returns the process and user id of the process on the other end
// of conn.
func peerCred(conn *net.UnixConn) (pid, uid int, ok bool) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, 0, false
	}

	var (
		cred    *unix.Ucred
		credErr error
	)

	err = raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil || credErr != nil {
		return 0, 0, false
	}

	return int(cred.Pid), int(cred.Uid), true
}
