// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
)

func TestDummyModeWriteIsNoOp(t *testing.T) {
	os.Setenv(common.DummyModeEnvVar, common.DummyModeValue)
	defer os.Unsetenv(common.DummyModeEnvVar)

	b := New(Config{DeviceID: "serial_bus_1", Device: "/dev/ttyUSB2", Baudrate: 9600, Log: logger.New("error")})
	require.NoError(t, b.Start())
	defer b.Stop()

	require.NoError(t, b.Write(Encode(Frame{Command: 0x01, Data: []byte{3}})))
}

func TestBusStopIsIdempotent(t *testing.T) {
	os.Setenv(common.DummyModeEnvVar, common.DummyModeValue)
	defer os.Unsetenv(common.DummyModeEnvVar)

	b := New(Config{DeviceID: "serial_bus_1", Device: "/dev/ttyUSB2", Baudrate: 9600, Log: logger.New("error")})
	require.NoError(t, b.Start())
	b.Stop()
	b.Stop()
}

func TestRegisterListenerReceivesMulticastFrames(t *testing.T) {
	b := New(Config{DeviceID: "serial_bus_1"})

	var got []Frame
	b.RegisterListener(listenerFunc(func(f Frame) { got = append(got, f) }))

	for _, l := range b.listeners {
		l.OnFrame(Frame{Command: 0x01, Data: []byte{9}})
	}
	require.Len(t, got, 1)
}

type listenerFunc func(Frame)

func (f listenerFunc) OnFrame(fr Frame) { f(fr) }
