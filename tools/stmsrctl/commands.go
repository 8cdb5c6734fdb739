// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/google/subcommands"
	"system-transparency.org/stmsr/dispatch"
	"system-transparency.org/stmsr/endpoint"
	"system-transparency.org/stmsr/msr"
)

func dial(args []interface{}) (*endpoint.Client, error) {
	socket, _ := args[0].(string)

	return endpoint.Dial(socket)
}

func parseIndex(s string) (uint32, error) {
	idx, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid register index %q: %w", s, err)
	}

	return uint32(idx), nil
}

func printValue(w io.Writer, what string, v msr.Value) {
	fmt.Fprintf(w, "%s: %s (0x%08x:0x%08x)\n", what, v, v.High(), v.Low())
}

// Read implements subcommands.Command for the "read" command.
type Read struct {
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*Read) Name() string { return "read" }

// Synopsis implements subcommands.Command.Synopsis.
func (*Read) Synopsis() string { return "read a model specific register" }

// Usage implements subcommands.Command.Usage.
func (*Read) Usage() string { return "read <index>\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (*Read) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (r *Read) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	idx, err := parseIndex(f.Arg(0))
	if err != nil {
		return fatalf("%v", err)
	}

	c, err := dial(args)
	if err != nil {
		return fatalf("%v", err)
	}
	defer c.Close()

	v, err := c.ReadMSR(idx)
	if err != nil {
		return fatalf("read MSR 0x%08x: %v", idx, err)
	}

	printValue(r.out, fmt.Sprintf("MSR 0x%08x", idx), v)

	return subcommands.ExitSuccess
}

// Write implements subcommands.Command for the "write" command.
type Write struct {
	out  io.Writer
	low  uint64
	high uint64
	set  bool
}

// Name implements subcommands.Command.Name.
func (*Write) Name() string { return "write" }

// Synopsis implements subcommands.Command.Synopsis.
func (*Write) Synopsis() string { return "write a model specific register" }

// Usage implements subcommands.Command.Usage.
func (*Write) Usage() string {
	return `write <index> <value>
write -low <eax> -high <edx> <index>
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (w *Write) SetFlags(f *flag.FlagSet) {
	f.Uint64Var(&w.low, "low", 0, "low double word (EAX)")
	f.Uint64Var(&w.high, "high", 0, "high double word (EDX)")
}

// Execute implements subcommands.Command.Execute.
func (w *Write) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "low" || fl.Name == "high" {
			w.set = true
		}
	})

	var v msr.Value

	switch {
	case w.set && f.NArg() == 1:
		if w.low > 0xffffffff || w.high > 0xffffffff {
			return fatalf("-low and -high must fit 32 bits")
		}

		v = msr.FromHalves(uint32(w.low), uint32(w.high))
	case !w.set && f.NArg() == 2:
		raw, err := strconv.ParseUint(f.Arg(1), 0, 64)
		if err != nil {
			return fatalf("invalid value %q: %v", f.Arg(1), err)
		}

		v = msr.Value(raw)
	default:
		f.Usage()

		return subcommands.ExitUsageError
	}

	idx, err := parseIndex(f.Arg(0))
	if err != nil {
		return fatalf("%v", err)
	}

	c, err := dial(args)
	if err != nil {
		return fatalf("%v", err)
	}
	defer c.Close()

	if err := c.WriteMSR(idx, v.Low(), v.High()); err != nil {
		return fatalf("write MSR 0x%08x: %v", idx, err)
	}

	printValue(w.out, fmt.Sprintf("wrote MSR 0x%08x", idx), v)

	return subcommands.ExitSuccess
}

// TSC implements subcommands.Command for the "tsc" command.
type TSC struct {
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*TSC) Name() string { return "tsc" }

// Synopsis implements subcommands.Command.Synopsis.
func (*TSC) Synopsis() string { return "read the time stamp counter" }

// Usage implements subcommands.Command.Usage.
func (*TSC) Usage() string { return "tsc\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (*TSC) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (t *TSC) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	c, err := dial(args)
	if err != nil {
		return fatalf("%v", err)
	}
	defer c.Close()

	v, err := c.ReadTSC()
	if err != nil {
		return fatalf("read TSC: %v", err)
	}

	printValue(t.out, "TSC", v)

	return subcommands.ExitSuccess
}

// Stop implements subcommands.Command for the "stop" command.
type Stop struct {
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*Stop) Name() string { return "stop" }

// Synopsis implements subcommands.Command.Synopsis.
func (*Stop) Synopsis() string { return "send the reserved stop command" }

// Usage implements subcommands.Command.Usage.
func (*Stop) Usage() string { return "stop\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (*Stop) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (s *Stop) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	c, err := dial(args)
	if err != nil {
		return fatalf("%v", err)
	}
	defer c.Close()

	if err := c.Stop(); err != nil {
		return fatalf("stop: %v", err)
	}

	fmt.Fprintln(s.out, "stop: ok")

	return subcommands.ExitSuccess
}

// Raw implements subcommands.Command for the "raw" command.
type Raw struct {
	out   io.Writer
	value uint64
}

// Name implements subcommands.Command.Name.
func (*Raw) Name() string { return "raw" }

// Synopsis implements subcommands.Command.Synopsis.
func (*Raw) Synopsis() string { return "issue a raw command code" }

// Usage implements subcommands.Command.Usage.
func (*Raw) Usage() string { return "raw [-value <v>] <code> <index>\n" }

// SetFlags implements subcommands.Command.SetFlags.
func (r *Raw) SetFlags(f *flag.FlagSet) {
	f.Uint64Var(&r.value, "value", 0, "initial value of the request record")
}

// Execute implements subcommands.Command.Execute.
func (r *Raw) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()

		return subcommands.ExitUsageError
	}

	code, err := strconv.ParseUint(f.Arg(0), 0, 32)
	if err != nil {
		return fatalf("invalid command code %q: %v", f.Arg(0), err)
	}

	idx, err := parseIndex(f.Arg(1))
	if err != nil {
		return fatalf("%v", err)
	}

	c, err := dial(args)
	if err != nil {
		return fatalf("%v", err)
	}
	defer c.Close()

	req := dispatch.Request{Index: idx, Value: msr.Value(r.value)}

	region, err := req.MarshalBinary()
	if err != nil {
		return fatalf("%v", err)
	}

	ret, err := c.Call(uint32(code), region, 0)
	if err != nil {
		return fatalf("command %d: %v", code, err)
	}

	if err := req.UnmarshalBinary(region); err != nil {
		return fatalf("%v", err)
	}

	fmt.Fprintf(r.out, "returned 0x%016x\n", ret)
	printValue(r.out, fmt.Sprintf("record MSR 0x%08x", req.Index), req.Value)

	return subcommands.ExitSuccess
}
