// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package flagx parses the runner's command line.
//
// The runner recognizes a small fixed set of flags and forwards everything
// else to the test binary untouched. The standard flag package cannot
// express that split (it fails on the first unknown flag), so Parse scans
// the raw argv itself and returns both the typed arguments and the leftover
// tokens in their original order.
package flagx

import (
	"os"
	"strings"

	"go.fuchsia.dev/lacewing/errors"
)

// ErrInvalidArgument is the kind of every error returned by Parse. Match it
// with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Args holds the runner's parsed command line. It is not mutated after
// Parse returns.
type Args struct {
	// Name is the test's name, used to label the artifact directory.
	Name string
	// TestBinary is the path to the prebuilt test binary.
	TestBinary string
	// FFX is the path to the ffx tool.
	FFX string
	// Target optionally names the device to run against. Empty means the
	// default target is resolved via ffx.
	Target string
	// TestArgs are the unrecognized tokens, in original order, forwarded
	// verbatim to the test binary.
	TestArgs []string
}

// Parse separates the runner's own flags from pass-through tokens.
//
// Recognized flags may be spelled with one or two dashes and take their
// value either as the next token or after an equals sign. --name,
// --test-binary and --ffx are required; the latter two must refer to
// existing regular files. All other tokens are collected into TestArgs.
func Parse(argv []string) (*Args, error) {
	args := &Args{}
	known := map[string]*string{
		"name":        &args.Name,
		"test-binary": &args.TestBinary,
		"ffx":         &args.FFX,
		"target":      &args.Target,
	}

	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		name, val, hasVal := splitFlag(tok)
		dest, ok := known[name]
		if !ok {
			args.TestArgs = append(args.TestArgs, tok)
			continue
		}
		if !hasVal {
			if i+1 >= len(argv) {
				return nil, errors.Wrapf(ErrInvalidArgument, "flag --%s requires a value", name)
			}
			i++
			val = argv[i]
		}
		*dest = val
	}

	if err := args.Validate(); err != nil {
		return nil, err
	}
	return args, nil
}

// Validate checks that the required arguments are present and that the
// path arguments refer to existing regular files.
func (a *Args) Validate() error {
	if a.Name == "" {
		return errors.Wrap(ErrInvalidArgument, "flag --name is required")
	}
	if err := checkFile("test-binary", a.TestBinary); err != nil {
		return err
	}
	return checkFile("ffx", a.FFX)
}

// splitFlag breaks a token of the form -flag, --flag, -flag=value or
// --flag=value into its flag name and inline value. Tokens that are not
// flags yield an empty name, which never matches a known flag.
func splitFlag(tok string) (name, value string, hasValue bool) {
	if !strings.HasPrefix(tok, "-") {
		return "", "", false
	}
	s := strings.TrimPrefix(strings.TrimPrefix(tok, "-"), "-")
	if eq := strings.IndexByte(s, '='); eq >= 0 {
		return s[:eq], s[eq+1:], true
	}
	return s, "", false
}

func checkFile(flagName, path string) error {
	if path == "" {
		return errors.Wrapf(ErrInvalidArgument, "flag --%s is required", flagName)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrInvalidArgument, "--%s: %q is not an existing file", flagName, path)
	}
	if !fi.Mode().IsRegular() {
		return errors.Wrapf(ErrInvalidArgument, "--%s: %q is not a regular file", flagName, path)
	}
	return nil
}
