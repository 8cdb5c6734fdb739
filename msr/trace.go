// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msr

import "system-transparency.org/stmsr/stlog"

type traced struct {
	Accessor
}

// Trace wraps a in an Accessor logging every register access at debug level.
func Trace(a Accessor) Accessor {
	if _, ok := a.(traced); ok {
		return a
	}

	return traced{a}
}

func (t traced) ReadMSR(index uint32) (Value, error) {
	v, err := t.Accessor.ReadMSR(index)
	if err != nil {
		stlog.Debug("Read from MSR 0x%08x failed: %v", index, err)

		return v, err
	}

	stlog.Debug("Read %s (0x%08x:0x%08x) from MSR 0x%08x", v, v.High(), v.Low(), index)

	return v, nil
}

func (t traced) WriteMSR(index uint32, low, high uint32) error {
	stlog.Debug("Performing write of %s (0x%08x:0x%08x) to MSR 0x%08x", FromHalves(low, high), high, low, index)

	if err := t.Accessor.WriteMSR(index, low, high); err != nil {
		stlog.Debug("Write to MSR 0x%08x failed: %v", index, err)

		return err
	}

	return nil
}

func (t traced) ReadTSC() Value {
	v := t.Accessor.ReadTSC()
	stlog.Debug("Read %s (0x%08x:0x%08x) from TSC", v, v.High(), v.Low())

	return v
}
