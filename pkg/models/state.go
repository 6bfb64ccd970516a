// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
// Copyright (c) 2019 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package models defines the shared data contracts that flow between the
// device control plane and its collaborators: device descriptors read at
// startup, the per-device runtime meta, the tagged-union device state, and
// the command/report DTOs exchanged over the inbound/outbound channels.
package models

// State is a closed sum type: the device types a running control plane can
// ever hold are fixed by the factory, so a marker-method interface is
// preferred here over an open, dynamically-dispatched one (see DESIGN.md).
// Only the variants declared in this file implement it.
type State interface {
	isState()
}

// EmptyState is the zero state assigned to a device meta before its first
// report.
type EmptyState struct{}

func (EmptyState) isState() {}

// DmxBusState snapshots the full 512-byte DMX frame currently held by a
// dmx_bus device.
type DmxBusState struct {
	Channels [512]byte
}

func (DmxBusState) isState() {}

// DoControllerState reports the full cached output-port vector of a
// modbus_do_controller.
type DoControllerState struct {
	Port []bool
}

func (DoControllerState) isState() {}

// DiControllerState reports the full cached input-port vector of a
// modbus_di_controller.
type DiControllerState struct {
	Port []bool
}

func (DiControllerState) isState() {}

// AudioStream describes one active playback instance on an audio_output
// device.
type AudioStream struct {
	FileID  string
	Playing bool
}

// AudioState enumerates the currently active streams on an audio_output
// device.
type AudioState struct {
	Streams []AudioStream
}

func (AudioState) isState() {}

// ChannelState reports a dmx_channel group's local cache.
type ChannelState struct {
	Address  uint16
	Channels []byte
}

func (ChannelState) isState() {}

// RemoteState reports the last pressed-button index seen by a
// serial_remote listener.
type RemoteState struct {
	Pressed byte
}

func (RemoteState) isState() {}

// DiState reports a single modbus_di_port's last known level.
type DiState struct {
	On bool
}

func (DiState) isState() {}

// DoState reports a single modbus_do_port's last attempted level (not a
// read-back).
type DoState struct {
	On bool
}

func (DoState) isState() {}
