// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runner orchestrates a single device-test invocation: it writes a
// testbed config, launches the prebuilt test binary against it, and
// preserves the test's output artifacts when the execution environment asks
// for them.
package runner

import (
	"context"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"go.fuchsia.dev/lacewing/errors"
	"go.fuchsia.dev/lacewing/fsutil"
	"go.fuchsia.dev/lacewing/internal/execx"
	"go.fuchsia.dev/lacewing/internal/logging"
	"go.fuchsia.dev/lacewing/internal/moblyconfig"
)

// moblyLogRoot is where mobly writes per-testbed logs by default.
const moblyLogRoot = "/tmp/logs/mobly"

// ErrArtifactCopy is the kind of errors reported when test artifacts cannot
// be preserved. Match it with errors.Is.
var ErrArtifactCopy = errors.New("artifact copy failed")

// clk is replaced in unit tests to use fake clocks.
var clk = clock.NewClock()

// Config describes a single test invocation.
type Config struct {
	// Name is the test's name. Artifacts land under a directory with
	// this name.
	Name string
	// TestBinary is the path to the prebuilt test binary.
	TestBinary string
	// FFX is the path to the ffx tool.
	FFX string
	// Target optionally names the device to test against. Empty means
	// the default target is resolved via ffx.
	Target string
	// TestArgs are forwarded verbatim to the test binary after the
	// config flag.
	TestArgs []string
	// OutputsDir is the root directory artifacts are copied under.
	// Empty disables artifact collection (local/manual runs).
	OutputsDir string
	// LogRoot overrides the mobly log root. Empty means the default;
	// tests point it at a fixture directory.
	LogRoot string
	// Cmd runs subprocesses. Nil means real processes are spawned.
	Cmd execx.Runner
}

// Run executes the full pipeline and returns the runner's process exit
// code. A failure before the test binary is launched yields 1; once the
// test binary has run, its exit code is propagated unchanged, except that a
// failed artifact copy upgrades a zero code to 1 so CI notices missing
// artifacts. A copy failure never masks a test failure.
func Run(ctx context.Context, cfg *Config) int {
	cmd := cfg.Cmd
	if cmd == nil {
		cmd = execx.NewRunner()
	}

	mc, err := moblyconfig.Generate(ctx, cmd, cfg.FFX, cfg.Target)
	if err != nil {
		logging.Infof(ctx, "Failed to generate testbed config: %v", err)
		return 1
	}
	confPath, err := mc.Write(ctx)
	if err != nil {
		logging.Infof(ctx, "Failed to write testbed config: %v", err)
		return 1
	}

	logHostInfo(ctx)

	bin, err := filepath.Abs(cfg.TestBinary)
	if err != nil {
		logging.Infof(ctx, "Failed to resolve %s: %v", cfg.TestBinary, err)
		return 1
	}
	argv := append([]string{bin, "-c", confPath}, cfg.TestArgs...)

	start := clk.Now()
	code, err := cmd.Run(ctx, argv)
	if err != nil {
		logging.Infof(ctx, "Failed to run %s: %v", cfg.Name, err)
		return 1
	}
	logging.Infof(ctx, "Test %s exited with code %d after %v",
		cfg.Name, code, clk.Since(start).Round(time.Millisecond))

	if cfg.OutputsDir != "" {
		if err := collectArtifacts(ctx, cfg); err != nil {
			logging.Infof(ctx, "Failed to collect artifacts: %v", err)
			if code == 0 {
				code = 1
			}
		}
	}
	return code
}

// collectArtifacts copies mobly's latest-run directory for the generated
// testbed into the harness-designated outputs directory.
func collectArtifacts(ctx context.Context, cfg *Config) error {
	root := cfg.LogRoot
	if root == "" {
		root = moblyLogRoot
	}
	src := filepath.Join(root, moblyconfig.TestBedName, "latest")
	dst := filepath.Join(cfg.OutputsDir, cfg.Name)
	logging.Infof(ctx, "Copying test outputs for %s to %s", moblyconfig.TestBedName, dst)
	if err := fsutil.CopyDir(src, dst); err != nil {
		return errors.Wrapf(ErrArtifactCopy, "%s: %v", src, err)
	}
	return nil
}

// logHostInfo logs a snapshot of the host machine before the test starts.
// Device tests are sensitive to a starved host, and this line makes that
// diagnosable after the fact. Failures here never affect the run.
func logHostInfo(ctx context.Context) {
	ncpu, err := cpu.Counts(true)
	if err != nil {
		logging.Debugf(ctx, "Failed to count host CPUs: %v", err)
		return
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		logging.Debugf(ctx, "Failed to read host memory: %v", err)
		return
	}
	logging.Debugf(ctx, "Host: %d CPUs, %d/%d MB memory available",
		ncpu, vm.Available/1024/1024, vm.Total/1024/1024)
}
