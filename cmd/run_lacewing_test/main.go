// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements run_lacewing_test, a thin shim that runs a
// prebuilt lacewing device test: it writes a testbed config for the chosen
// target, launches the test binary against it, and exits with the test's
// own exit code.
package main

import (
	"context"
	"fmt"
	"os"

	"go.fuchsia.dev/lacewing/internal/flagx"
	"go.fuchsia.dev/lacewing/internal/logging"
	"go.fuchsia.dev/lacewing/internal/runner"
)

// outputsDirEnv is set by the test harness when it wants the run's
// artifacts preserved.
const outputsDirEnv = "TEST_UNDECLARED_OUTPUTS_DIR"

const usage = `Usage: run_lacewing_test --name <test name> --test-binary <path> --ffx <path> [--target <name>] [test args...]

Runs a prebuilt lacewing device test. Unrecognized arguments are forwarded
to the test binary unchanged. When ` + outputsDirEnv + ` is set, mobly's
latest-run outputs are copied beneath it after the run.
`

// doMain implements the main body of the program. It's a separate function
// so that deferred functions run before os.Exit makes the program exit
// immediately.
func doMain() int {
	// Diagnostics go to stderr: some harnesses reorder stdout, and the
	// test binary's own stdout passes through this process.
	logger := logging.NewSinkLogger(logging.LevelDebug, true, logging.NewWriterSink(os.Stderr))
	ctx := logging.AttachLogger(context.Background(), logger)

	args, err := flagx.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		return 2
	}

	return runner.Run(ctx, &runner.Config{
		Name:       args.Name,
		TestBinary: args.TestBinary,
		FFX:        args.FFX,
		Target:     args.Target,
		TestArgs:   args.TestArgs,
		OutputsDir: os.Getenv(outputsDirEnv),
	})
}

func main() {
	os.Exit(doMain())
}
