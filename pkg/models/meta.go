// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// Status is the runtime lifecycle state of a device meta entry.
type Status string

const (
	StatusNotInitialized Status = "NotInitialized"
	StatusInitialized    Status = "Initialized"
	StatusActive         Status = "Active"
	StatusError          Status = "Error"
	StatusOffline        Status = "Offline"
)

// DeviceMeta is the runtime counterpart of a DeviceDescriptor: it carries
// everything that changes after startup. Fields are only ever mutated by
// the state reporter (see worker.Reporter); every other reader takes a
// snapshot under the cache's lock.
type DeviceMeta struct {
	DeviceID       string
	DeviceType     DeviceType
	MasterDeviceID string
	Config         map[string]interface{}

	Status         Status
	ErrorMsg       string
	ErrorTimestamp time.Time
	LastUpdate     time.Time
	State          State
}

// NewDeviceMeta builds the initial meta entry for a freshly assembled
// device: NotInitialized status, EmptyState, no timestamps.
func NewDeviceMeta(d DeviceDescriptor) *DeviceMeta {
	return &DeviceMeta{
		DeviceID:       d.DeviceID,
		DeviceType:     d.DeviceType,
		MasterDeviceID: d.MasterDeviceID,
		Config:         d.Config,
		Status:         StatusNotInitialized,
		State:          EmptyState{},
	}
}
