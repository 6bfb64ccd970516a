// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package models

// DeviceClass is the coarse role of a device within the topological graph.
type DeviceClass string

const (
	ClassBus        DeviceClass = "bus"
	ClassController DeviceClass = "controller"
	ClassOperable   DeviceClass = "operable"
)

// DeviceType is the concrete kind of a device descriptor.
type DeviceType string

const (
	TypeModbusBus          DeviceType = "modbus_bus"
	TypeDmxBus             DeviceType = "dmx_bus"
	TypeSerialBus          DeviceType = "serial_bus"
	TypeModbusDoController DeviceType = "modbus_do_controller"
	TypeModbusDiController DeviceType = "modbus_di_controller"
	TypeModbusDoPort       DeviceType = "modbus_do_port"
	TypeModbusDiPort       DeviceType = "modbus_di_port"
	TypeDmxChannel         DeviceType = "dmx_channel"
	TypeAudioOutput        DeviceType = "audio_output"
	TypeSerialRemote       DeviceType = "serial_remote"
)

// Class reports the coarse DeviceClass implied by a DeviceType. The
// factory does not call it; it checks parent compatibility by the concrete
// type of the parent handle.
func (t DeviceType) Class() DeviceClass {
	switch t {
	case TypeModbusBus, TypeDmxBus, TypeSerialBus:
		return ClassBus
	case TypeModbusDoController, TypeModbusDiController:
		return ClassController
	default:
		return ClassOperable
	}
}

// DeviceDescriptor is the static, catalogue-sourced definition of one
// device. Descriptors are immutable once loaded.
type DeviceDescriptor struct {
	DeviceID       string                 `yaml:"device_id"`
	DeviceClass    DeviceClass            `yaml:"device_class"`
	DeviceType     DeviceType             `yaml:"device_type"`
	MasterDeviceID string                 `yaml:"master_device_id,omitempty"`
	Config         map[string]interface{} `yaml:"config"`
}

// ConfigString reads a required string field from the descriptor's config
// map, returning ok=false if absent or of the wrong type.
func (d DeviceDescriptor) ConfigString(key string) (string, bool) {
	v, found := d.Config[key]
	if !found {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ConfigInt reads a required integer field from the descriptor's config
// map. YAML numeric scalars decode as int in gopkg.in/yaml.v2.
func (d DeviceDescriptor) ConfigInt(key string) (int, bool) {
	v, found := d.Config[key]
	if !found {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
