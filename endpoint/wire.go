// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package endpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
	"system-transparency.org/stmsr/dispatch"
	"system-transparency.org/stmsr/msr"
)

// Frame layout, little endian:
//
//	call:  code u32 | addr u64 | region_len u32 | region
//	reply: status u32 | value u64 | region_len u32 | region
const headerLen = 16

// Status codes of a reply. Everything but StatusOK is a Linux errno.
const (
	StatusOK          uint32 = 0
	StatusUnsupported        = uint32(unix.EOPNOTSUPP)
	StatusInvalidMSR         = uint32(unix.EIO)
	StatusBadAddress         = uint32(unix.EFAULT)
	StatusInvalid            = uint32(unix.EINVAL)
)

var (
	ErrShortHeader    = errors.New("endpoint: short frame header")
	ErrRegionTooLarge = errors.New("endpoint: region too large")
	ErrFailed         = errors.New("endpoint: call failed")
)

type header struct {
	word      uint32 // code in a call, status in a reply
	value     uint64 // addr in a call, value in a reply
	regionLen uint32
}

func readHeader(r io.Reader) (header, error) {
	var b [headerLen]byte

	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return header{}, ErrShortHeader
		}

		return header{}, err
	}

	return header{
		word:      binary.LittleEndian.Uint32(b[0:4]),
		value:     binary.LittleEndian.Uint64(b[4:12]),
		regionLen: binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

func writeFrame(w io.Writer, h header, region []byte) error {
	b := make([]byte, headerLen+len(region))
	binary.LittleEndian.PutUint32(b[0:4], h.word)
	binary.LittleEndian.PutUint64(b[4:12], h.value)
	binary.LittleEndian.PutUint32(b[12:16], uint32(len(region)))
	copy(b[headerLen:], region)

	_, err := w.Write(b)

	return err
}

// statusOf maps a dispatch error to the status sent to the caller.
func statusOf(err error) uint32 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, dispatch.ErrUnsupportedCommand):
		return StatusUnsupported
	case errors.Is(err, msr.ErrInvalidRegisterIndex):
		return StatusInvalidMSR
	case errors.Is(err, dispatch.ErrBoundaryViolation), errors.Is(err, ErrRegionTooLarge):
		return StatusBadAddress
	default:
		return StatusInvalid
	}
}

// errorOf maps a reply status back to the matching sentinel error.
func errorOf(status uint32) error {
	errno := unix.Errno(status)

	switch status {
	case StatusOK:
		return nil
	case StatusUnsupported:
		return fmt.Errorf("%w (%v)", dispatch.ErrUnsupportedCommand, errno)
	case StatusInvalidMSR:
		return fmt.Errorf("%w (%v)", msr.ErrInvalidRegisterIndex, errno)
	case StatusBadAddress:
		return fmt.Errorf("%w (%v)", dispatch.ErrBoundaryViolation, errno)
	default:
		return fmt.Errorf("%w: %v", ErrFailed, errno)
	}
}
