// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"time"

	"github.com/circutor/device-engine/internal/cache"
	"github.com/circutor/device-engine/pkg/models"
)

// Heartbeat publishes a ServerState snapshot on a fixed interval,
// regardless of device activity (SPEC_FULL.md §4.12).
type Heartbeat struct {
	interval    time.Duration
	meta        *cache.MetaCache
	descriptors map[string]models.DeviceDescriptor
	outbound    chan<- models.OutboundMessage
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewHeartbeat builds a Heartbeat. descriptors is the static catalogue,
// keyed by device_id, copied verbatim into every snapshot's DeviceConfig.
func NewHeartbeat(interval time.Duration, meta *cache.MetaCache, descriptors map[string]models.DeviceDescriptor, outbound chan<- models.OutboundMessage) *Heartbeat {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Heartbeat{
		interval:    interval,
		meta:        meta,
		descriptors: descriptors,
		outbound:    outbound,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Run ticks every h.interval and publishes a snapshot, until Stop is
// called.
func (h *Heartbeat) Run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.publishSnapshot()
		}
	}
}

// Stop requests the ticker loop exit and waits for it to do so.
// Idempotent.
func (h *Heartbeat) Stop() {
	select {
	case <-h.stopCh:
	default:
		close(h.stopCh)
	}
	<-h.doneCh
}

func (h *Heartbeat) publishSnapshot() {
	h.outbound <- h.Snapshot()
}

// Snapshot builds the ServerState message without publishing it, exposed
// so tests can read the same view the ticker loop would emit.
func (h *Heartbeat) Snapshot() models.OutboundMessage {
	status := make(map[string]models.DeviceStatusDto, len(h.descriptors))
	for id, m := range h.meta.Snapshot() {
		status[id] = models.DeviceStatusDto{
			Active:         m.Status == models.StatusActive,
			ErrorMsg:       m.ErrorMsg,
			ErrorTimestamp: m.ErrorTimestamp,
			LastUpdate:     m.LastUpdate,
			State:          m.State,
		}
	}

	return models.OutboundMessage{
		Kind: models.OutboundServerState,
		ServerState: models.ServerState{
			DeviceConfig: h.descriptors,
			DeviceStatus: status,
		},
	}
}
