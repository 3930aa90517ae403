// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"go.fuchsia.dev/lacewing/internal/flagx"
	"go.fuchsia.dev/lacewing/internal/logging"
	"go.fuchsia.dev/lacewing/internal/runner"
)

// outputsDirEnv is set by the test harness when it wants the run's
// artifacts preserved.
const outputsDirEnv = "TEST_UNDECLARED_OUTPUTS_DIR"

// runCmd implements subcommands.Command to run a prebuilt device test.
type runCmd struct {
	args flagx.Args
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a prebuilt device test" }
func (*runCmd) Usage() string {
	return `run -name <test name> -test-binary <path> -ffx <path> [-target <name>] [test args...]:
	Runs a device test, forwarding trailing arguments to the test binary.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.args.Name, "name", "", "the test's name")
	f.StringVar(&r.args.TestBinary, "test-binary", "", "path to the prebuilt test binary")
	f.StringVar(&r.args.FFX, "ffx", "", "path to the ffx tool")
	f.StringVar(&r.args.Target, "target", "", "target device (defaults to the default target)")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r.args.TestArgs = f.Args()
	if err := r.args.Validate(); err != nil {
		logging.Infof(ctx, "%v\n\n%s", err, r.Usage())
		return subcommands.ExitUsageError
	}

	code := runner.Run(ctx, &runner.Config{
		Name:       r.args.Name,
		TestBinary: r.args.TestBinary,
		FFX:        r.args.FFX,
		Target:     r.args.Target,
		TestArgs:   r.args.TestArgs,
		OutputsDir: os.Getenv(outputsDirEnv),
	})
	return subcommands.ExitStatus(code)
}
