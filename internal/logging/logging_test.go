// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.fuchsia.dev/lacewing/internal/logging"
)

func TestSinkLoggerLevel(t *testing.T) {
	var got []string
	logger := logging.NewSinkLogger(logging.LevelInfo, false, logging.NewFuncSink(func(msg string) {
		got = append(got, msg)
	}))

	logger.Log(logging.LevelDebug, time.Now(), "debug msg")
	logger.Log(logging.LevelInfo, time.Now(), "info msg")

	want := []string{"info msg"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Logged messages mismatch (-got +want):\n%s", diff)
	}
}

func TestSinkLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSinkLogger(logging.LevelInfo, true, logging.NewWriterSink(&buf))

	ts := time.Date(2024, 3, 4, 5, 6, 7, 891011000, time.UTC)
	logger.Log(logging.LevelInfo, ts, "hello")

	const want = "2024-03-04T05:06:07.891011Z hello\n"
	if got := buf.String(); got != want {
		t.Errorf("Logged message %q; want %q", got, want)
	}
}

func TestAttachLoggerPropagation(t *testing.T) {
	var outer, inner []string
	ctx := context.Background()
	ctx = logging.AttachLogger(ctx, logging.NewSinkLogger(logging.LevelDebug, false, logging.NewFuncSink(func(msg string) {
		outer = append(outer, msg)
	})))
	ctx = logging.AttachLogger(ctx, logging.NewSinkLogger(logging.LevelDebug, false, logging.NewFuncSink(func(msg string) {
		inner = append(inner, msg)
	})))

	logging.Info(ctx, "both")

	if want := []string{"both"}; !cmp.Equal(inner, want) || !cmp.Equal(outer, want) {
		t.Errorf("Propagated logs mismatch: inner=%v outer=%v", inner, outer)
	}
}

func TestAttachLoggerNoPropagation(t *testing.T) {
	var outer []string
	ctx := context.Background()
	ctx = logging.AttachLogger(ctx, logging.NewSinkLogger(logging.LevelDebug, false, logging.NewFuncSink(func(msg string) {
		outer = append(outer, msg)
	})))
	ctx = logging.AttachLoggerNoPropagation(ctx, logging.NewSinkLogger(logging.LevelDebug, false, logging.NewFuncSink(func(string) {})))

	logging.Info(ctx, "inner only")

	if len(outer) != 0 {
		t.Errorf("Log unexpectedly propagated to outer logger: %v", outer)
	}
}

func TestLogWithoutLogger(t *testing.T) {
	// Logging to a bare context must be a silent no-op.
	logging.Infof(context.Background(), "dropped %d", 1)
}

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.AttachLogger(context.Background(),
		logging.NewSinkLogger(logging.LevelDebug, false, logging.NewWriterSink(&buf)))

	logging.Debugf(ctx, "value=%d", 42)

	if got := strings.TrimSuffix(buf.String(), "\n"); got != "value=42" {
		t.Errorf("Debugf logged %q; want %q", got, "value=42")
	}
}
