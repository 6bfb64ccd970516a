// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package modbus

import "github.com/circutor/device-engine/pkg/models"

// DiPort implements the modbus_di_port device_type (SPEC_FULL.md §4.5): a
// single addressable input, mounted on a DiController, with no command
// path — it only receives edges and reports them upward.
type DiPort struct {
	deviceID string
	report   ReportFunc
}

// NewDiPort builds a DI port. Callers must mount it on its controller via
// DiController.MountPort.
func NewDiPort(deviceID string, report ReportFunc) *DiPort {
	return &DiPort{deviceID: deviceID, report: report}
}

// Notify is invoked by the owning DiController when this port's position
// changes level.
func (p *DiPort) Notify(on bool) {
	p.report(models.StateReportDto{
		DeviceID:    p.deviceID,
		DeviceClass: models.ClassOperable,
		DeviceType:  models.TypeModbusDiPort,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.DiState{On: on},
		},
	})
}
