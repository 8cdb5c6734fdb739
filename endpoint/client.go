// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package endpoint

import (
	"fmt"
	"io"
	"net"
	"sync"

	"system-transparency.org/stmsr/dispatch"
	"system-transparency.org/stmsr/msr"
	"system-transparency.org/stmsr/sterror"
)

// Client is a connection to a control endpoint. It is safe for concurrent
// use; calls are serialized on the connection.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the control endpoint at path.
func Dial(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, sterror.E(sterror.Op("Dial"), sterror.Endpoint, err)
	}

	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call issues the raw multiplexed operation: code is the command code and
// addr the address of the request record inside region. region is updated
// with the endpoint's copy of it afterwards.
func (c *Client) Call(code uint32, region []byte, addr dispatch.Addr) (uint64, error) {
	const op = sterror.Op("Call")

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := writeFrame(c.conn, header{word: code, value: uint64(addr)}, region); err != nil {
		return 0, sterror.E(op, sterror.Endpoint, err)
	}

	h, err := readHeader(c.conn)
	if err != nil {
		return 0, sterror.E(op, sterror.Endpoint, err)
	}

	reply := make([]byte, h.regionLen)
	if _, err := io.ReadFull(c.conn, reply); err != nil {
		return 0, sterror.E(op, sterror.Endpoint, err)
	}

	if err := errorOf(h.word); err != nil {
		return 0, sterror.E(op, sterror.Endpoint, err)
	}

	if len(reply) != len(region) {
		return 0, sterror.E(op, sterror.Endpoint, fmt.Errorf("%w: reply region of %d bytes, sent %d", ErrFailed, len(reply), len(region)))
	}

	copy(region, reply)

	return h.value, nil
}

func (c *Client) do(cmd dispatch.Command, req *dispatch.Request) (uint64, error) {
	region, err := req.MarshalBinary()
	if err != nil {
		return 0, err
	}

	val, err := c.Call(uint32(cmd), region, 0)
	if err != nil {
		return 0, err
	}

	if err := req.UnmarshalBinary(region); err != nil {
		return 0, err
	}

	return val, nil
}

// ReadMSR reads register index.
func (c *Client) ReadMSR(index uint32) (msr.Value, error) {
	req := dispatch.Request{Index: index}

	if _, err := c.do(dispatch.Read, &req); err != nil {
		return 0, err
	}

	return req.Value, nil
}

// WriteMSR writes the halves to register index.
func (c *Client) WriteMSR(index uint32, low, high uint32) error {
	req := dispatch.Request{Index: index}
	req.SetHalves(low, high)

	_, err := c.do(dispatch.Write, &req)

	return err
}

// ReadTSC reads the time stamp counter.
func (c *Client) ReadTSC() (msr.Value, error) {
	req := dispatch.Request{}

	if _, err := c.do(dispatch.ReadTSC, &req); err != nil {
		return 0, err
	}

	return req.Value, nil
}

// Stop issues the reserved stop command.
func (c *Client) Stop() error {
	_, err := c.do(dispatch.Stop, &dispatch.Request{})

	return err
}
