// Copyright 2022 the System Transparency Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// stmsrctl talks to the stmsr control endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/subcommands"
	"system-transparency.org/stmsr/opts"
)

func register(cdr *subcommands.Commander, out io.Writer) {
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(cdr.CommandsCommand(), "")

	const group = "registers"
	cdr.Register(&Read{out: out}, group)
	cdr.Register(&Write{out: out}, group)
	cdr.Register(&TSC{out: out}, group)
	cdr.Register(&Stop{out: out}, group)
	cdr.Register(&Raw{out: out}, group)
}

func main() {
	log.SetPrefix("stmsrctl: ")
	log.SetFlags(0)

	socket := flag.String("socket", opts.DefaultSocketPath, "path of the stmsr control socket")

	register(subcommands.DefaultCommander, os.Stdout)
	flag.Parse()

	os.Exit(int(subcommands.Execute(context.Background(), *socket)))
}

// fatalf prints to stderr and returns ExitFailure.
func fatalf(format string, v ...interface{}) subcommands.ExitStatus {
	log.Print(fmt.Sprintf(format, v...))

	return subcommands.ExitFailure
}
