// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package moblyconfig builds the testbed configuration consumed by
// honeydew-based device tests.
//
// A config describes exactly one testbed holding exactly one device
// controller. The device name is either supplied by the caller or resolved
// by asking ffx for the default target.
package moblyconfig

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"go.fuchsia.dev/lacewing/errors"
	"go.fuchsia.dev/lacewing/internal/execx"
	"go.fuchsia.dev/lacewing/internal/logging"
)

// TestBedName is the name of the single generated testbed.
const TestBedName = "GeneratedTestbed"

// configPrefix prefixes generated config file names so they are easy to
// find in the temp directory after a run.
const configPrefix = "mobly_config-"

// ErrDeviceResolution is the kind of errors returned when the default
// target cannot be resolved. Match it with errors.Is.
var ErrDeviceResolution = errors.New("device resolution failed")

// Format selects the serialization format of a config.
type Format int

const (
	// FormatJSON renders indented JSON. This is what generated configs
	// are written as; mobly parses it since JSON is a YAML subset.
	FormatJSON Format = iota
	// FormatYAML renders YAML, mobly's native config format, for
	// hand-editing during local debugging.
	FormatYAML
)

// Config is the root of a mobly testbed configuration.
type Config struct {
	TestBeds []TestBed `json:"TestBeds" yaml:"TestBeds"`
}

// TestBed names a set of device controllers for one test run.
type TestBed struct {
	Name        string      `json:"Name" yaml:"Name"`
	Controllers Controllers `json:"Controllers" yaml:"Controllers"`
}

// Controllers holds the device controllers of a testbed.
type Controllers struct {
	FuchsiaDevice []Device `json:"FuchsiaDevice" yaml:"FuchsiaDevice"`
}

// Device configures a single honeydew-controlled Fuchsia device.
type Device struct {
	Name     string   `json:"name" yaml:"name"`
	Honeydew Honeydew `json:"honeydew_config" yaml:"honeydew_config"`
}

// Honeydew configures honeydew's transports for a device.
type Honeydew struct {
	Transports Transports `json:"transports" yaml:"transports"`
}

// Transports lists the transports honeydew may use to reach the device.
type Transports struct {
	FFX FFXTransport `json:"ffx" yaml:"ffx"`
}

// FFXTransport points honeydew at the ffx binary to use.
type FFXTransport struct {
	Path string `json:"path" yaml:"path"`
}

// New builds a config with a single testbed containing a single device
// controller named target. ffxPath is made absolute before it is embedded,
// since the test binary may run with a different working directory.
func New(target, ffxPath string) (*Config, error) {
	abs, err := filepath.Abs(ffxPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", ffxPath)
	}
	return &Config{
		TestBeds: []TestBed{{
			Name: TestBedName,
			Controllers: Controllers{
				FuchsiaDevice: []Device{{
					Name: target,
					Honeydew: Honeydew{
						Transports: Transports{
							FFX: FFXTransport{Path: abs},
						},
					},
				}},
			},
		}},
	}, nil
}

// Generate builds a config for target, resolving the default target via ffx
// when target is empty.
func Generate(ctx context.Context, r execx.Runner, ffxPath, target string) (*Config, error) {
	if target == "" {
		var err error
		if target, err = ResolveTarget(ctx, r, ffxPath); err != nil {
			return nil, err
		}
	}
	return New(target, ffxPath)
}

// ResolveTarget asks ffx for the default target and returns its identifier.
func ResolveTarget(ctx context.Context, r execx.Runner, ffxPath string) (string, error) {
	out, err := r.Output(ctx, []string{ffxPath, "target", "default", "get"})
	if err != nil {
		return "", errors.Wrapf(ErrDeviceResolution, "ffx target default get: %v", err)
	}
	target := strings.TrimSpace(string(out))
	if target == "" {
		return "", errors.Wrap(ErrDeviceResolution, "ffx reported no default target")
	}
	logging.Debugf(ctx, "Resolved default target %q", target)
	return target, nil
}

// Marshal renders the config in the requested format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(c)
	default:
		return json.MarshalIndent(c, "", "  ")
	}
}

// Write persists the config as indented JSON to a freshly named file in the
// temp directory and returns its path. The file is closed before the path
// is returned so a subprocess can immediately read it. The random suffix
// keeps concurrent runner invocations from colliding. The file is left
// behind after the run so failed invocations can be reproduced by hand.
func (c *Config) Write(ctx context.Context) (string, error) {
	b, err := c.Marshal(FormatJSON)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(os.TempDir(), configPrefix+uuid.NewString()+".json")
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write config to %s", path)
	}
	logging.Debugf(ctx, "Wrote mobly config %s:\n%s", path, b)
	return path, nil
}
