// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
	"github.com/circutor/device-engine/pkg/models"
)

func withDummyMode(t *testing.T) {
	t.Helper()
	os.Setenv(common.DummyModeEnvVar, common.DummyModeValue)
	t.Cleanup(func() { os.Unsetenv(common.DummyModeEnvVar) })
}

func testOpts() Options {
	return Options{Log: logger.New("error"), Report: func(models.StateReportDto) {}}
}

func TestBuildFullTopologyWiresBusesControllersLeaves(t *testing.T) {
	withDummyMode(t)

	descriptors := []models.DeviceDescriptor{
		{DeviceID: "modbus_bus_1", DeviceClass: models.ClassBus, DeviceType: models.TypeModbusBus,
			Config: map[string]interface{}{"serial_port": "/dev/ttyUSB0", "baudrate": 9600}},
		{DeviceID: "do_ctrl_1", DeviceClass: models.ClassController, DeviceType: models.TypeModbusDoController,
			MasterDeviceID: "modbus_bus_1", Config: map[string]interface{}{"unit": 2, "output_num": 4}},
		{DeviceID: "di_ctrl_1", DeviceClass: models.ClassController, DeviceType: models.TypeModbusDiController,
			MasterDeviceID: "modbus_bus_1", Config: map[string]interface{}{"unit": 1, "num": 8}},
		{DeviceID: "do_port_1", DeviceClass: models.ClassOperable, DeviceType: models.TypeModbusDoPort,
			MasterDeviceID: "do_ctrl_1", Config: map[string]interface{}{"address": 0}},
		{DeviceID: "di_port_1", DeviceClass: models.ClassOperable, DeviceType: models.TypeModbusDiPort,
			MasterDeviceID: "di_ctrl_1", Config: map[string]interface{}{"address": 3}},
		{DeviceID: "dmx_bus_1", DeviceClass: models.ClassBus, DeviceType: models.TypeDmxBus,
			Config: map[string]interface{}{"serial_port": "/dev/ttyUSB1"}},
		{DeviceID: "dmx_channel_1", DeviceClass: models.ClassOperable, DeviceType: models.TypeDmxChannel,
			MasterDeviceID: "dmx_bus_1", Config: map[string]interface{}{"address": 10, "channel_num": 3}},
		{DeviceID: "serial_bus_1", DeviceClass: models.ClassBus, DeviceType: models.TypeSerialBus,
			Config: map[string]interface{}{"serial_port": "/dev/ttyUSB2", "baudrate": 9600}},
		{DeviceID: "remote_1", DeviceClass: models.ClassOperable, DeviceType: models.TypeSerialRemote,
			MasterDeviceID: "serial_bus_1", Config: map[string]interface{}{"num_button": 4}},
		{DeviceID: "audio_1", DeviceClass: models.ClassOperable, DeviceType: models.TypeAudioOutput,
			Config: map[string]interface{}{"soundcard_id": "card0", "channel": "left"}},
	}

	g, err := Build(descriptors, testOpts())
	require.NoError(t, err)

	assert.Len(t, g.Buses, 3)
	assert.Contains(t, g.Leaves, "do_port_1")
	assert.Contains(t, g.Leaves, "dmx_channel_1")
	assert.Contains(t, g.Leaves, "audio_1")
	assert.NotContains(t, g.Leaves, "di_port_1", "di ports are mounted on their controller, not routable leaves")
	assert.NotContains(t, g.Leaves, "remote_1", "serial remotes are registered as bus listeners, not routable leaves")

	for _, id := range []string{"modbus_bus_1", "do_ctrl_1", "di_ctrl_1", "do_port_1", "di_port_1",
		"dmx_bus_1", "dmx_channel_1", "serial_bus_1", "remote_1", "audio_1"} {
		_, ok := g.Meta.Get(id)
		assert.Truef(t, ok, "meta entry for %s", id)
	}
}

func TestBuildUnknownDeviceTypeIsConstructionError(t *testing.T) {
	withDummyMode(t)
	descriptors := []models.DeviceDescriptor{
		{DeviceID: "mystery", DeviceType: models.DeviceType("mystery_type")},
	}
	_, err := Build(descriptors, testOpts())
	require.Error(t, err)
	var appErr common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeConstruction, appErr.Code())
}

func TestBuildMissingParentIsConstructionError(t *testing.T) {
	withDummyMode(t)
	descriptors := []models.DeviceDescriptor{
		{DeviceID: "do_port_1", DeviceType: models.TypeModbusDoPort, MasterDeviceID: "nope",
			Config: map[string]interface{}{"address": 0}},
	}
	_, err := Build(descriptors, testOpts())
	require.Error(t, err)
}

func TestBuildClassMismatchIsConstructionError(t *testing.T) {
	withDummyMode(t)
	descriptors := []models.DeviceDescriptor{
		{DeviceID: "dmx_bus_1", DeviceType: models.TypeDmxBus, Config: map[string]interface{}{"serial_port": "/dev/ttyUSB0"}},
		{DeviceID: "do_port_1", DeviceType: models.TypeModbusDoPort, MasterDeviceID: "dmx_bus_1",
			Config: map[string]interface{}{"address": 0}},
	}
	_, err := Build(descriptors, testOpts())
	require.Error(t, err)
}

func TestBuildMalformedConfigIsConstructionError(t *testing.T) {
	withDummyMode(t)
	descriptors := []models.DeviceDescriptor{
		{DeviceID: "modbus_bus_1", DeviceType: models.TypeModbusBus, Config: map[string]interface{}{"serial_port": "/dev/ttyUSB0"}},
	}
	_, err := Build(descriptors, testOpts())
	require.Error(t, err)
}
