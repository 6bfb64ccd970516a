// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package modbus

import (
	"sync"

	"github.com/circutor/device-engine/pkg/models"
)

// diPortListener is the narrow interface a mounted DI port exposes to its
// controller, grounded on original_source/src/driver/modbus/modbus_di_port.rs's
// ModbusDiControllerMountable trait.
type diPortListener interface {
	Notify(on bool)
}

// DiController implements the modbus_di_controller device_type
// (SPEC_FULL.md §4.3): a cached input-port vector refreshed once per poll
// sweep, forwarding per-position edges to mounted ports and emitting one
// aggregate report per sweep.
type DiController struct {
	deviceID string
	unit     byte
	inputNum int
	flavor   Flavor
	report   ReportFunc

	mu    sync.Mutex
	ports map[int]diPortListener
	state []bool
}

// NewDiController builds a DI controller with an all-false initial cache.
func NewDiController(deviceID string, unit byte, inputNum int, flavor Flavor, report ReportFunc) *DiController {
	return &DiController{
		deviceID: deviceID,
		unit:     unit,
		inputNum: inputNum,
		flavor:   flavor,
		report:   report,
		ports:    make(map[int]diPortListener),
		state:    make([]bool, inputNum),
	}
}

// MountPort registers a DI port at addr, so future edges at that position
// reach it.
func (c *DiController) MountPort(addr int, port diPortListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ports[addr] = port
}

func (c *DiController) Unit() byte      { return c.unit }
func (c *DiController) PortNum() uint16 { return uint16(c.inputNum) }
func (c *DiController) Flavor() Flavor  { return c.flavor }

// NotifyFromBus is invoked once per poll sweep by the bus master loop with
// the freshly read values. Per SPEC_FULL.md §4.3: for each position whose
// value differs from the cache, the mounted port (if any) is notified of
// the edge — positions with no mounted port are not suppressed, they are
// simply unobserved. The cache is then replaced wholesale, and a single
// aggregate report is emitted for the whole sweep.
func (c *DiController) NotifyFromBus(values []bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, v := range values {
		if i >= len(c.state) {
			break
		}
		if c.state[i] != v {
			if port, ok := c.ports[i]; ok {
				port.Notify(v)
			}
		}
	}

	c.state = append(c.state[:0], values...)

	port := make([]bool, len(c.state))
	copy(port, c.state)
	c.report(models.StateReportDto{
		DeviceID:    c.deviceID,
		DeviceClass: models.ClassController,
		DeviceType:  models.TypeModbusDiController,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.DiControllerState{Port: port},
		},
	})
}
