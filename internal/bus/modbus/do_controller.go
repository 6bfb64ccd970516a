// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package modbus

import (
	"sync"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/pkg/models"
)

// busWriter is the subset of *Bus a DO controller needs, so tests can
// substitute a recording fake without spinning up a real master loop.
type busWriter interface {
	WriteSingleCoil(unit byte, addr uint16, value bool)
	WriteMultipleCoils(unit byte, addr uint16, values []bool)
	WriteSingleRegister(unit byte, addr uint16, value uint16)
	WriteMultipleRegisters(unit byte, addr uint16, values []uint16)
}

// ReportFunc is how every device in this package emits a StateReportDto
// upward to the state reporter. The factory wires a closure bound to the
// state reporter's inbound report channel.
type ReportFunc func(models.StateReportDto)

// DoController implements the modbus_do_controller device_type
// (SPEC_FULL.md §4.4): a cached output-port vector, dispatching writes as
// coils or as 0/1 holding registers depending on flavor, never repeating a
// write whose value already matches the cache.
type DoController struct {
	deviceID  string
	unit      byte
	outputNum int
	flavor    Flavor
	bus       busWriter
	report    ReportFunc

	mu    sync.Mutex
	state []bool
}

// NewDoController builds a DO controller with an all-false initial cache,
// per SPEC_FULL.md §3 ("Modbus controller's port length equals the
// configured port count").
func NewDoController(deviceID string, unit byte, outputNum int, flavor Flavor, bus busWriter, report ReportFunc) *DoController {
	return &DoController{
		deviceID:  deviceID,
		unit:      unit,
		outputNum: outputNum,
		flavor:    flavor,
		bus:       bus,
		report:    report,
		state:     make([]bool, outputNum),
	}
}

// WriteOne validates addr, updates the cache, and — only if the new value
// differs from the cached one — issues exactly one write to the bus. A
// state report is emitted unconditionally.
func (c *DoController) WriteOne(addr int, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if addr < 0 || addr >= c.outputNum {
		return common.NewRangeError(c.deviceID, "address out of bounds")
	}

	changed := c.state[addr] != value
	c.state[addr] = value
	if changed {
		c.writeLocked(uint16(addr), []bool{value})
	}
	c.reportLocked()
	return nil
}

// WriteMulti validates the [baseAddr, baseAddr+len(values)) range, updates
// the cache range, and issues one multi-write only if any value in the
// range differs from the cache.
func (c *DoController) WriteMulti(baseAddr int, values []bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if baseAddr < 0 || baseAddr+len(values) > c.outputNum {
		return common.NewRangeError(c.deviceID, "range out of bounds")
	}

	changed := false
	for i, v := range values {
		if c.state[baseAddr+i] != v {
			changed = true
		}
		c.state[baseAddr+i] = v
	}
	if changed {
		c.writeLocked(uint16(baseAddr), values)
	}
	c.reportLocked()
	return nil
}

func (c *DoController) writeLocked(addr uint16, values []bool) {
	switch c.flavor {
	case FlavorCoil:
		if len(values) == 1 {
			c.bus.WriteSingleCoil(c.unit, addr, values[0])
		} else {
			c.bus.WriteMultipleCoils(c.unit, addr, values)
		}
	default:
		words := make([]uint16, len(values))
		for i, v := range values {
			if v {
				words[i] = 1
			}
		}
		if len(words) == 1 {
			c.bus.WriteSingleRegister(c.unit, addr, words[0])
		} else {
			c.bus.WriteMultipleRegisters(c.unit, addr, words)
		}
	}
}

func (c *DoController) reportLocked() {
	port := make([]bool, len(c.state))
	copy(port, c.state)
	c.report(models.StateReportDto{
		DeviceID:    c.deviceID,
		DeviceClass: models.ClassController,
		DeviceType:  models.TypeModbusDoController,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.DoControllerState{Port: port},
		},
	})
}

// Snapshot returns a copy of the cached output-port vector.
func (c *DoController) Snapshot() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]bool, len(c.state))
	copy(out, c.state)
	return out
}
