// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package modbus

import (
	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/pkg/models"
)

// DoPort implements the modbus_do_port device_type (SPEC_FULL.md §4.5): a
// single addressable output on a DoController.
type DoPort struct {
	deviceID   string
	address    int
	controller *DoController
	report     ReportFunc
}

// NewDoPort builds a DO port mounted on controller at address.
func NewDoPort(deviceID string, address int, controller *DoController, report ReportFunc) *DoPort {
	return &DoPort{deviceID: deviceID, address: address, controller: controller, report: report}
}

// Command accepts {on: bool} (or {action: "on"|"off"}), via
// models.DoParams, forwarding to the controller and then emitting a Do{on}
// state report for this specific port.
func (p *DoPort) Command(cmd models.DeviceCommandDto) error {
	on, err := toDesiredLevel(cmd)
	if err != nil {
		return err
	}

	if err := p.controller.WriteOne(p.address, on); err != nil {
		return err
	}

	p.report(models.StateReportDto{
		DeviceID:    p.deviceID,
		DeviceClass: models.ClassOperable,
		DeviceType:  models.TypeModbusDoPort,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.DoState{On: on},
		},
	})
	return nil
}

func toDesiredLevel(cmd models.DeviceCommandDto) (bool, error) {
	switch p := cmd.Params.(type) {
	case models.DoParams:
		return p.On, nil
	case models.EmptyParams:
		switch cmd.Action {
		case "on":
			return true, nil
		case "off":
			return false, nil
		default:
			return false, common.NewRoutingError(cmd.DeviceID, "unsupported action for modbus_do_port: "+cmd.Action)
		}
	default:
		return false, common.NewRoutingError(cmd.DeviceID, "param variant mismatch for modbus_do_port")
	}
}
