// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package flagx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.fuchsia.dev/lacewing/errors"
	"go.fuchsia.dev/lacewing/internal/flagx"
	"go.fuchsia.dev/lacewing/testutil"
)

// writeBinaries creates fake test-binary and ffx files and returns their paths.
func writeBinaries(t *testing.T) (td, testBin, ffx string) {
	t.Helper()
	td = testutil.TempDir(t)
	t.Cleanup(func() { os.RemoveAll(td) })
	if err := testutil.WriteFiles(td, map[string]string{
		"test_bin": "#!/bin/sh\n",
		"ffx":      "#!/bin/sh\n",
	}); err != nil {
		t.Fatal(err)
	}
	return td, filepath.Join(td, "test_bin"), filepath.Join(td, "ffx")
}

func TestParse(t *testing.T) {
	_, testBin, ffx := writeBinaries(t)

	for _, tc := range []struct {
		name string
		argv []string
		want *flagx.Args
	}{
		{
			name: "all flags",
			argv: []string{"--name", "smoke", "--test-binary", testBin, "--ffx", ffx, "--target", "fuchsia-emu"},
			want: &flagx.Args{Name: "smoke", TestBinary: testBin, FFX: ffx, Target: "fuchsia-emu"},
		},
		{
			name: "no target",
			argv: []string{"--name", "smoke", "--test-binary", testBin, "--ffx", ffx},
			want: &flagx.Args{Name: "smoke", TestBinary: testBin, FFX: ffx},
		},
		{
			name: "equals and single dash spellings",
			argv: []string{"-name=smoke", "--test-binary=" + testBin, "-ffx", ffx},
			want: &flagx.Args{Name: "smoke", TestBinary: testBin, FFX: ffx},
		},
		{
			name: "passthrough preserved in order",
			argv: []string{"positional", "--name", "smoke", "--verbose", "--test-binary", testBin, "--ffx", ffx, "--", "tail"},
			want: &flagx.Args{
				Name: "smoke", TestBinary: testBin, FFX: ffx,
				TestArgs: []string{"positional", "--verbose", "--", "tail"},
			},
		},
		{
			name: "unknown flag value passes through",
			argv: []string{"--name", "smoke", "--test-binary", testBin, "--ffx", ffx, "--test_case_filter", "test_foo"},
			want: &flagx.Args{
				Name: "smoke", TestBinary: testBin, FFX: ffx,
				TestArgs: []string{"--test_case_filter", "test_foo"},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := flagx.Parse(tc.argv)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.argv, err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Parse(%q) mismatch (-got +want):\n%s", tc.argv, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	td, testBin, ffx := writeBinaries(t)

	for _, tc := range []struct {
		name string
		argv []string
	}{
		{"empty", nil},
		{"missing name", []string{"--test-binary", testBin, "--ffx", ffx}},
		{"missing test-binary", []string{"--name", "smoke", "--ffx", ffx}},
		{"missing ffx", []string{"--name", "smoke", "--test-binary", testBin}},
		{"nonexistent test-binary", []string{"--name", "smoke", "--test-binary", filepath.Join(td, "nope"), "--ffx", ffx}},
		{"test-binary is a directory", []string{"--name", "smoke", "--test-binary", td, "--ffx", ffx}},
		{"dangling value", []string{"--name", "smoke", "--test-binary", testBin, "--ffx"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := flagx.Parse(tc.argv); err == nil {
				t.Errorf("Parse(%q) unexpectedly succeeded", tc.argv)
			} else if !errors.Is(err, flagx.ErrInvalidArgument) {
				t.Errorf("Parse(%q) = %v; want ErrInvalidArgument kind", tc.argv, err)
			}
		})
	}
}

func TestEnumFlag(t *testing.T) {
	var dest int
	f := flagx.NewEnumFlag(map[string]int{"json": 0, "yaml": 1}, func(v int) { dest = v }, "json")

	if got := f.Default(); got != "json" {
		t.Errorf("Default() = %q; want %q", got, "json")
	}
	if err := f.Set("yaml"); err != nil {
		t.Errorf("Set(\"yaml\") failed: %v", err)
	} else if dest != 1 {
		t.Errorf("Set(\"yaml\") assigned %d; want 1", dest)
	}
	if err := f.Set("toml"); err == nil {
		t.Error("Set(\"toml\") unexpectedly succeeded")
	}
}
