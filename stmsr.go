// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// stmsr serves the model specific registers and the time stamp counter of
// one CPU to unprivileged callers through a Unix domain socket.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"system-transparency.org/stmsr/dispatch"
	"system-transparency.org/stmsr/endpoint"
	"system-transparency.org/stmsr/msr"
	"system-transparency.org/stmsr/opts"
	"system-transparency.org/stmsr/stlog"
)

const (
	logLevelHelp = "Log level: e 'errors' w 'warn', i 'info', d 'debug'."
	klogHelp     = "Log to the kernel log instead of stderr"
	configHelp   = "Configuration file (.json, .yaml or .yml)"
	backendHelp  = "Register backend: 'msr' or 'memory', overrides the configuration"
	socketHelp   = "Socket path, overrides the configuration"
)

// Error reports stmsr errors.
type Error string

// Error implements error interface.
func (e Error) Error() string {
	return string(e)
}

const ErrBackend = Error("no register backend")

type flags struct {
	logLevel string
	klog     bool
	config   string
	backend  string
	socket   string
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{}

	fs.StringVar(&f.logLevel, "loglevel", "info", logLevelHelp)
	fs.BoolVar(&f.klog, "klog", false, klogHelp)
	fs.StringVar(&f.config, "config", "", configHelp)
	fs.StringVar(&f.backend, "backend", "", backendHelp)
	fs.StringVar(&f.socket, "socket", "", socketHelp)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return f, nil
}

// loaders translates the flags into opts Loaders, the file first so flags
// take precedence.
func (f *flags) loaders() ([]opts.Loader, error) {
	loaders := []opts.Loader{opts.WithDefaults()}

	if f.config != "" {
		loaders = append(loaders, opts.WithFile(f.config))
	}

	if f.backend != "" {
		b, err := opts.ParseBackend(f.backend)
		if err != nil {
			return nil, err
		}

		loaders = append(loaders, opts.WithBackend(b))
	}

	if f.socket != "" {
		loaders = append(loaders, opts.WithSocketPath(f.socket))
	}

	return loaders, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBackend returns the register Accessor selected by o and the Closer
// releasing it.
func openBackend(o *opts.Opts) (msr.Accessor, io.Closer, error) {
	switch o.Backend {
	case opts.MSRBackend:
		cpu, err := msr.Open(o.CPU, o.MSRPath)
		if err != nil {
			return nil, nil, err
		}

		stlog.Info("Using msr driver of cpu %d", o.CPU)

		return cpu, cpu, nil
	case opts.MemoryBackend:
		stlog.Warn("Using simulated registers, no hardware is accessed")

		return msr.NewSimulated(), nopCloser{}, nil
	default:
		return nil, nil, ErrBackend
	}
}

func run(ctx context.Context, args []string) error {
	f, err := parseFlags(flag.NewFlagSet("stmsr", flag.ContinueOnError), args)
	if err != nil {
		return err
	}

	level, err := stlog.ParseLevel(f.logLevel)
	if err != nil {
		stlog.Warn("%v, using %s", err, level)
	}

	stlog.SetLevel(level)

	if f.klog {
		if err := stlog.SetOutput(stlog.KernelSyslog); err != nil {
			stlog.Warn("kernel log unavailable: %v", err)
		}
	}

	loaders, err := f.loaders()
	if err != nil {
		return err
	}

	o, err := opts.NewOpts(loaders...)
	if err != nil {
		return err
	}

	stlog.Debug("Opts: %+v", *o)

	regs, closer, err := openBackend(o)
	if err != nil {
		return err
	}
	defer closer.Close()

	ep, err := endpoint.Register(o)
	if err != nil {
		return err
	}

	defer func() {
		if err := ep.Unregister(); err != nil {
			stlog.Error("unregister: %v", err)
		}
	}()

	return ep.Serve(ctx, dispatch.New(msr.Trace(regs)))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}

		stlog.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
