// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execx runs external commands behind a narrow interface so tests
// can substitute fakes instead of spawning real processes.
package execx

import (
	"context"
	"os"
	"os/exec"

	"go.fuchsia.dev/lacewing/errors"
	"go.fuchsia.dev/lacewing/internal/logging"
	"go.fuchsia.dev/lacewing/shutil"
)

// Runner executes external commands.
type Runner interface {
	// Run executes argv with the parent's standard streams attached and
	// blocks until the command exits. The command's exit code is returned
	// verbatim. A non-nil error means the command could not be run at all
	// (e.g. the binary does not exist or is not executable); a non-zero
	// exit code alone is not an error.
	Run(ctx context.Context, argv []string) (int, error)

	// Output executes argv with stderr attached to the parent's stderr and
	// returns the captured stdout. A non-zero exit is an error.
	Output(ctx context.Context, argv []string) ([]byte, error)
}

// cmdRunner is the Runner implementation backed by os/exec.
type cmdRunner struct{}

// NewRunner returns a Runner that spawns real processes.
func NewRunner() Runner {
	return &cmdRunner{}
}

func (r *cmdRunner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("empty command line")
	}
	logging.Debugf(ctx, "Running: %s", shutil.EscapeSlice(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.Wrapf(err, "failed to run %s", argv[0])
	}
	return 0, nil
}

func (r *cmdRunner) Output(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command line")
	}
	logging.Debugf(ctx, "Running: %s", shutil.EscapeSlice(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to run %s", argv[0])
	}
	return out, nil
}
