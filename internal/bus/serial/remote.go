// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"github.com/circutor/device-engine/pkg/models"
)

// ReportFunc is how this package emits a StateReportDto upward.
type ReportFunc func(models.StateReportDto)

// Remote implements the serial_remote device_type: an input-only leaf that
// interprets data[0] of every frame the bus multicasts to it as the index
// of the button currently pressed and reports it. It issues no commands of
// its own. The bus delivers every decoded frame regardless of command byte
// (SPEC_FULL.md §4.8), so Remote does not gate on Command either.
type Remote struct {
	deviceID string
	report   ReportFunc
}

// NewRemote builds a Remote.
func NewRemote(deviceID string, report ReportFunc) *Remote {
	return &Remote{deviceID: deviceID, report: report}
}

// OnFrame implements Listener. Frames with an empty payload are ignored.
func (r *Remote) OnFrame(f Frame) {
	if len(f.Data) == 0 {
		return
	}

	r.report(models.StateReportDto{
		DeviceID:    r.deviceID,
		DeviceClass: models.ClassOperable,
		DeviceType:  models.TypeSerialRemote,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.RemoteState{Pressed: f.Data[0]},
		},
	})
}
