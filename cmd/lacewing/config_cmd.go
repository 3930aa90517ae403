// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"go.fuchsia.dev/lacewing/fsutil"
	"go.fuchsia.dev/lacewing/internal/execx"
	"go.fuchsia.dev/lacewing/internal/flagx"
	"go.fuchsia.dev/lacewing/internal/logging"
	"go.fuchsia.dev/lacewing/internal/moblyconfig"
)

// configCmd implements subcommands.Command to generate a testbed config
// without running a test. Useful when debugging honeydew transport issues
// against a particular device.
type configCmd struct {
	ffx    string
	target string
	out    string
	format moblyconfig.Format
}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "generate a testbed config" }
func (*configCmd) Usage() string {
	return `config -ffx <path> [-target <name>] [-format json|yaml] [-out <path>]:
	Generates the testbed config a test run would use and prints it.
`
}

func (c *configCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ffx, "ffx", "", "path to the ffx tool")
	f.StringVar(&c.target, "target", "", "target device (defaults to the default target)")
	f.StringVar(&c.out, "out", "", "write the config to this file instead of stdout")
	ff := flagx.NewEnumFlag(map[string]int{
		"json": int(moblyconfig.FormatJSON),
		"yaml": int(moblyconfig.FormatYAML),
	}, func(v int) { c.format = moblyconfig.Format(v) }, "json")
	f.Var(ff, "format", fmt.Sprintf("config format (%s; default %q)", ff.QuotedValues(), ff.Default()))
}

func (c *configCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ffx == "" {
		logging.Infof(ctx, "Missing -ffx.\n\n%s", c.Usage())
		return subcommands.ExitUsageError
	}

	cfg, err := moblyconfig.Generate(ctx, execx.NewRunner(), c.ffx, c.target)
	if err != nil {
		logging.Infof(ctx, "Failed to generate testbed config: %v", err)
		return subcommands.ExitFailure
	}
	b, err := cfg.Marshal(c.format)
	if err != nil {
		logging.Infof(ctx, "Failed to marshal testbed config: %v", err)
		return subcommands.ExitFailure
	}

	if c.out == "" {
		fmt.Printf("%s\n", b)
		return subcommands.ExitSuccess
	}
	if err := writeFileAtomically(c.out, b); err != nil {
		logging.Infof(ctx, "Failed to write %s: %v", c.out, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// writeFileAtomically writes data to a temp file and moves it into place so
// a half-written config is never observed at path.
func writeFileAtomically(path string, data []byte) error {
	tf, err := os.CreateTemp("", "lacewing_config-")
	if err != nil {
		return err
	}
	if _, err := tf.Write(data); err != nil {
		tf.Close()
		os.Remove(tf.Name())
		return err
	}
	if err := tf.Close(); err != nil {
		os.Remove(tf.Name())
		return err
	}
	if err := os.Chmod(tf.Name(), 0644); err != nil {
		os.Remove(tf.Name())
		return err
	}
	if err := fsutil.MoveFile(tf.Name(), path); err != nil {
		os.Remove(tf.Name())
		return err
	}
	return nil
}
