// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithStampsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := FromSlog(slog.New(slog.NewTextHandler(&buf, nil)))

	tagged := l.With("device_id", "modbus_do_0")
	tagged.Info("wrote coil")

	out := buf.String()
	assert.Contains(t, out, "device_id=modbus_do_0")
	assert.Contains(t, out, "wrote coil")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := FromSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: parseLevel("warn")})))

	l.Info("should be filtered out")
	l.Warn("should appear")

	out := buf.String()
	assert.False(t, strings.Contains(out, "should be filtered out"))
	assert.Contains(t, out, "should appear")
}
