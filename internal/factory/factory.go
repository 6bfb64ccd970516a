// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package factory builds the device graph from a flat catalogue of
// descriptors in three ordered passes (SPEC_FULL.md §4.1): buses,
// controllers, leaves. It is grounded on the teacher SDK's
// example/device-simple device-map construction, generalized from a
// single flat map into the topological bus→controller→leaf walk this
// specification requires.
package factory

import (
	"time"

	"github.com/circutor/device-engine/internal/audio"
	"github.com/circutor/device-engine/internal/bus/dmx"
	"github.com/circutor/device-engine/internal/bus/modbus"
	"github.com/circutor/device-engine/internal/bus/serial"
	"github.com/circutor/device-engine/internal/cache"
	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
	"github.com/circutor/device-engine/pkg/models"
)

// Leaf is the command-acceptor capability every leaf device_type exposes
// to the dispatcher (SPEC_FULL.md §4.1: "a typed, opaque capability
// sufficient to accept a command").
type Leaf interface {
	Command(models.DeviceCommandDto) error
}

// Startable is the capability every bus-level device_type exposes to the
// process entry point.
type Startable interface {
	Start() error
	Stop()
}

// Graph is the result of a successful Build: the flat maps the rest of
// the service routes commands and tracks status through.
type Graph struct {
	Leaves map[string]Leaf
	Buses  []Startable
	Meta   *cache.MetaCache
}

// Options groups the collaborators every constructed device needs: a
// logger and the upward report sink the state reporter consumes from.
type Options struct {
	Log          logger.Logger
	Report       func(models.StateReportDto)
	ModbusPoll   time.Duration
	DmxFrame     time.Duration
}

// Build runs the three-pass topological assembly described in
// SPEC_FULL.md §4.1 over descriptors, in the order they appear within
// each pass. Any construction error aborts the whole build; a partially
// built graph is never returned.
func Build(descriptors []models.DeviceDescriptor, opts Options) (*Graph, error) {
	initialMeta := make(map[string]*models.DeviceMeta, len(descriptors))
	for _, d := range descriptors {
		initialMeta[d.DeviceID] = models.NewDeviceMeta(d)
	}

	g := &Graph{
		Leaves: make(map[string]Leaf),
		Meta:   cache.NewMetaCache(initialMeta),
	}

	busHandles := make(map[string]interface{})
	controllerHandles := make(map[string]interface{})

	// Pass 1: buses.
	for _, d := range descriptors {
		switch d.DeviceType {
		case models.TypeModbusBus:
			serialPort, ok := d.ConfigString("serial_port")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "serial_port", "missing or wrong type")
			}
			baudrate, ok := d.ConfigInt("baudrate")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "baudrate", "missing or wrong type")
			}
			b := modbus.New(modbus.Config{
				DeviceID:     d.DeviceID,
				SerialPort:   serialPort,
				Baudrate:     baudrate,
				PollInterval: opts.ModbusPoll,
				Log:          opts.Log,
			})
			busHandles[d.DeviceID] = b
			g.Buses = append(g.Buses, b)

		case models.TypeDmxBus:
			serialPort, ok := d.ConfigString("serial_port")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "serial_port", "missing or wrong type")
			}
			b := dmx.New(dmx.Config{
				DeviceID:      d.DeviceID,
				SerialPort:    serialPort,
				FrameInterval: opts.DmxFrame,
				Log:           opts.Log,
			})
			busHandles[d.DeviceID] = b
			g.Buses = append(g.Buses, b)

		case models.TypeSerialBus:
			serialPort, ok := d.ConfigString("serial_port")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "serial_port", "missing or wrong type")
			}
			baudrate, ok := d.ConfigInt("baudrate")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "baudrate", "missing or wrong type")
			}
			b := serial.New(serial.Config{
				DeviceID: d.DeviceID,
				Device:   serialPort,
				Baudrate: baudrate,
				Log:      opts.Log,
			})
			busHandles[d.DeviceID] = b
			g.Buses = append(g.Buses, b)
		}
	}

	// Pass 2: controllers.
	for _, d := range descriptors {
		switch d.DeviceType {
		case models.TypeModbusDoController:
			bus, err := lookupModbusBus(busHandles, d)
			if err != nil {
				return nil, err
			}
			unit, outputNum, err := unitAndCount(d, "output_num")
			if err != nil {
				return nil, err
			}
			ctrl := modbus.NewDoController(d.DeviceID, unit, outputNum, flavorOf(d), bus, opts.Report)
			controllerHandles[d.DeviceID] = ctrl

		case models.TypeModbusDiController:
			bus, err := lookupModbusBus(busHandles, d)
			if err != nil {
				return nil, err
			}
			unit, inputNum, err := unitAndCount(d, "num")
			if err != nil {
				return nil, err
			}
			ctrl := modbus.NewDiController(d.DeviceID, unit, inputNum, flavorOf(d), opts.Report)
			bus.RegisterDiController(ctrl)
			controllerHandles[d.DeviceID] = ctrl
		}
	}

	// Pass 3: leaves.
	for _, d := range descriptors {
		switch d.DeviceType {
		case models.TypeModbusDoPort:
			ctrl, err := lookupDoController(controllerHandles, d)
			if err != nil {
				return nil, err
			}
			addr, ok := d.ConfigInt("address")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "address", "missing or wrong type")
			}
			g.Leaves[d.DeviceID] = modbus.NewDoPort(d.DeviceID, addr, ctrl, opts.Report)

		case models.TypeModbusDiPort:
			ctrl, err := lookupDiController(controllerHandles, d)
			if err != nil {
				return nil, err
			}
			addr, ok := d.ConfigInt("address")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "address", "missing or wrong type")
			}
			port := modbus.NewDiPort(d.DeviceID, opts.Report)
			ctrl.MountPort(addr, port)

		case models.TypeDmxChannel:
			bus, err := lookupDmxBus(busHandles, d)
			if err != nil {
				return nil, err
			}
			address, ok := d.ConfigInt("address")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "address", "missing or wrong type")
			}
			channelNum, ok := d.ConfigInt("channel_num")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "channel_num", "missing or wrong type")
			}
			g.Leaves[d.DeviceID] = dmx.NewChannelGroup(d.DeviceID, uint16(address), channelNum, bus, opts.Report)

		case models.TypeSerialRemote:
			bus, err := lookupSerialBus(busHandles, d)
			if err != nil {
				return nil, err
			}
			if _, ok := d.ConfigInt("num_button"); !ok {
				return nil, common.NewConstructionError(d.DeviceID, "num_button", "missing or wrong type")
			}
			bus.RegisterListener(serial.NewRemote(d.DeviceID, opts.Report))

		case models.TypeAudioOutput:
			soundcardID, ok := d.ConfigString("soundcard_id")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "soundcard_id", "missing or wrong type")
			}
			channelStr, ok := d.ConfigString("channel")
			if !ok {
				return nil, common.NewConstructionError(d.DeviceID, "channel", "missing or wrong type")
			}
			var channel audio.Channel
			switch channelStr {
			case "left":
				channel = audio.ChannelLeft
			case "right":
				channel = audio.ChannelRight
			default:
				return nil, common.NewConstructionError(d.DeviceID, "channel", "must be left or right")
			}
			g.Leaves[d.DeviceID] = audio.NewOutput(d.DeviceID, soundcardID, channel, audio.NewNoopOpenFunc(), opts.Report)

		case models.TypeModbusBus, models.TypeDmxBus, models.TypeSerialBus,
			models.TypeModbusDoController, models.TypeModbusDiController:
			// handled in earlier passes

		default:
			return nil, common.NewConstructionError(d.DeviceID, "device_type", "unknown device_type: "+string(d.DeviceType))
		}
	}

	return g, nil
}

func flavorOf(d models.DeviceDescriptor) modbus.Flavor {
	if f, ok := d.ConfigString("flavor"); ok && f == "register" {
		return modbus.FlavorRegister
	}
	return modbus.FlavorCoil
}

func unitAndCount(d models.DeviceDescriptor, countField string) (byte, int, error) {
	unit, ok := d.ConfigInt("unit")
	if !ok || unit < 0 || unit > 255 {
		return 0, 0, common.NewConstructionError(d.DeviceID, "unit", "missing, wrong type, or out of 0..255")
	}
	count, ok := d.ConfigInt(countField)
	if !ok {
		return 0, 0, common.NewConstructionError(d.DeviceID, countField, "missing or wrong type")
	}
	return byte(unit), count, nil
}

func lookupModbusBus(handles map[string]interface{}, d models.DeviceDescriptor) (*modbus.Bus, error) {
	h, ok := handles[d.MasterDeviceID]
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent bus not found: "+d.MasterDeviceID)
	}
	bus, ok := h.(*modbus.Bus)
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent is not a modbus_bus")
	}
	return bus, nil
}

func lookupDmxBus(handles map[string]interface{}, d models.DeviceDescriptor) (*dmx.Bus, error) {
	h, ok := handles[d.MasterDeviceID]
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent bus not found: "+d.MasterDeviceID)
	}
	bus, ok := h.(*dmx.Bus)
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent is not a dmx_bus")
	}
	return bus, nil
}

func lookupSerialBus(handles map[string]interface{}, d models.DeviceDescriptor) (*serial.Bus, error) {
	h, ok := handles[d.MasterDeviceID]
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent bus not found: "+d.MasterDeviceID)
	}
	bus, ok := h.(*serial.Bus)
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent is not a serial_bus")
	}
	return bus, nil
}

func lookupDoController(handles map[string]interface{}, d models.DeviceDescriptor) (*modbus.DoController, error) {
	h, ok := handles[d.MasterDeviceID]
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent controller not found: "+d.MasterDeviceID)
	}
	ctrl, ok := h.(*modbus.DoController)
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent is not a modbus_do_controller")
	}
	return ctrl, nil
}

func lookupDiController(handles map[string]interface{}, d models.DeviceDescriptor) (*modbus.DiController, error) {
	h, ok := handles[d.MasterDeviceID]
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent controller not found: "+d.MasterDeviceID)
	}
	ctrl, ok := h.(*modbus.DiController)
	if !ok {
		return nil, common.NewConstructionError(d.DeviceID, "master_device_id", "parent is not a modbus_di_controller")
	}
	return ctrl, nil
}
