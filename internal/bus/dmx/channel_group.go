// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package dmx

import (
	"sync"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/pkg/models"
)

// bus is the subset of *Bus a channel group needs, so tests can fake it.
type bus interface {
	SetChannel(addr uint16, value byte) error
	SetChannels(baseAddr uint16, values []byte) error
}

// ChannelGroup implements the dmx_channel device_type (SPEC_FULL.md §4.7):
// a contiguous range of channels on a shared dmx_bus, with its own local
// cache mirroring what it last forwarded to the bus.
type ChannelGroup struct {
	deviceID string
	address  uint16
	bus      bus
	report   ReportFunc

	mu    sync.Mutex
	cache []byte
}

// ReportFunc is how this package emits a StateReportDto upward.
type ReportFunc func(models.StateReportDto)

// NewChannelGroup builds a channel group of channelNum channels starting
// at address on bus.
func NewChannelGroup(deviceID string, address uint16, channelNum int, bus bus, report ReportFunc) *ChannelGroup {
	return &ChannelGroup{
		deviceID: deviceID,
		address:  address,
		bus:      bus,
		report:   report,
		cache:    make([]byte, channelNum),
	}
}

// SetChannel updates the local cache at local index i and forwards the
// absolute address to the bus, then emits a Channel{address, channels}
// report.
func (g *ChannelGroup) SetChannel(i int, value byte) error {
	g.mu.Lock()
	if i < 0 || i >= len(g.cache) {
		g.mu.Unlock()
		return common.NewRangeError(g.deviceID, "channel index out of bounds")
	}
	g.cache[i] = value
	channels := make([]byte, len(g.cache))
	copy(channels, g.cache)
	g.mu.Unlock()

	if err := g.bus.SetChannel(g.address+uint16(i), value); err != nil {
		return err
	}

	g.report(models.StateReportDto{
		DeviceID:    g.deviceID,
		DeviceClass: models.ClassOperable,
		DeviceType:  models.TypeDmxChannel,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.ChannelState{Address: g.address, Channels: channels},
		},
	})
	return nil
}

// Command accepts models.ChannelParams{Index, Value} and forwards to
// SetChannel.
func (g *ChannelGroup) Command(cmd models.DeviceCommandDto) error {
	p, ok := cmd.Params.(models.ChannelParams)
	if !ok {
		return common.NewRoutingError(cmd.DeviceID, "param variant mismatch for dmx_channel")
	}
	return g.SetChannel(p.Index, p.Value)
}

// Snapshot returns a copy of the group's local cache.
func (g *ChannelGroup) Snapshot() []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]byte, len(g.cache))
	copy(out, g.cache)
	return out
}
