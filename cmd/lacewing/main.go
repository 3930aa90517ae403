// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements the lacewing executable, used to run device tests
// and inspect the testbed configs they are given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"go.fuchsia.dev/lacewing/internal/logging"
)

var Version = "<unknown>" // filled in by the build system

// doMain implements the main body of the program. It's a separate function
// so that deferred functions run before os.Exit makes the program exit
// immediately.
func doMain() int {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&configCmd{}, "")

	version := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "use verbose logging")
	flag.Parse()

	if *version {
		fmt.Printf("lacewing version %s\n", Version)
		return 0
	}

	level := logging.LevelInfo
	if *verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewSinkLogger(level, true, logging.NewWriterSink(os.Stderr))
	ctx := logging.AttachLogger(context.Background(), logger)

	return int(subcommands.Execute(ctx))
}

func main() {
	os.Exit(doMain())
}
