// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package worker implements the three core long-running loops of the
// control plane (SPEC_FULL.md §4.10-§4.12): command dispatch, state
// reporting, and the heartbeat. Grounded on the teacher SDK's
// internal/handler goroutine-per-responsibility shape, generalized from
// its single EdgeX message-queue consumer into the three independent
// loops this specification names.
package worker

import (
	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
	"github.com/circutor/device-engine/pkg/models"
)

// Commander is the capability every routable leaf exposes.
type Commander interface {
	Command(models.DeviceCommandDto) error
}

// Dispatcher pulls inbound commands off a channel, looks up the target
// leaf by device_id, and invokes its command handler (SPEC_FULL.md
// §4.10). It terminates only when its inbound channel is closed.
type Dispatcher struct {
	inbound chan models.DeviceCommandDto
	leaves  map[string]Commander
	log     logger.Logger
}

// NewDispatcher builds a Dispatcher routing against leaves.
func NewDispatcher(inbound chan models.DeviceCommandDto, leaves map[string]Commander, log logger.Logger) *Dispatcher {
	return &Dispatcher{inbound: inbound, leaves: leaves, log: log}
}

// Run consumes d.inbound until it is closed. Unknown device_ids and
// command errors are logged and do not stop the loop (SPEC_FULL.md §7:
// routing and range errors are non-fatal).
func (d *Dispatcher) Run() {
	for cmd := range d.inbound {
		leaf, ok := d.leaves[cmd.DeviceID]
		if !ok {
			err := common.NewRoutingError(cmd.DeviceID, "unknown device_id")
			d.log.Error("command dispatch failed", "device_id", cmd.DeviceID, "err", err)
			continue
		}

		if err := leaf.Command(cmd); err != nil {
			d.log.Error("command handler failed", "device_id", cmd.DeviceID, "action", cmd.Action, "err", err)
		}
	}
}
