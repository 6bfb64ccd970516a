// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/internal/cache"
	"github.com/circutor/device-engine/pkg/models"
)

func TestReporterAppliesStateAndForwardsOutbound(t *testing.T) {
	meta := cache.NewMetaCache(map[string]*models.DeviceMeta{
		"do_port_1": models.NewDeviceMeta(models.DeviceDescriptor{DeviceID: "do_port_1"}),
	})
	inbound := make(chan models.StateReportDto, 1)
	outbound := make(chan models.OutboundMessage, 1)
	r := NewReporter(inbound, outbound, meta)

	go r.Run()
	inbound <- models.StateReportDto{
		DeviceID:   "do_port_1",
		DeviceType: models.TypeModbusDoPort,
		Status:     models.DeviceStatusDto{Active: true, State: models.DoState{On: true}},
	}
	close(inbound)

	select {
	case out := <-outbound:
		assert.Equal(t, models.OutboundDeviceState, out.Kind)
		assert.Equal(t, "do_port_1", out.DeviceState.DeviceID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound message")
	}

	m, ok := meta.Get("do_port_1")
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, m.Status)
	assert.Equal(t, models.DoState{On: true}, m.State)
}

func TestReporterMarksErrorStatusFromErrorMsg(t *testing.T) {
	meta := cache.NewMetaCache(map[string]*models.DeviceMeta{
		"modbus_bus_1": models.NewDeviceMeta(models.DeviceDescriptor{DeviceID: "modbus_bus_1"}),
	})
	inbound := make(chan models.StateReportDto, 1)
	outbound := make(chan models.OutboundMessage, 1)
	r := NewReporter(inbound, outbound, meta)

	go r.Run()
	inbound <- models.StateReportDto{
		DeviceID: "modbus_bus_1",
		Status:   models.DeviceStatusDto{ErrorMsg: "serial open failed"},
	}
	close(inbound)
	<-outbound

	m, ok := meta.Get("modbus_bus_1")
	require.True(t, ok)
	assert.Equal(t, models.StatusError, m.Status)
	assert.Equal(t, "serial open failed", m.ErrorMsg)
}

func TestReporterIgnoresUnknownDeviceID(t *testing.T) {
	meta := cache.NewMetaCache(nil)
	inbound := make(chan models.StateReportDto, 1)
	outbound := make(chan models.OutboundMessage, 1)
	r := NewReporter(inbound, outbound, meta)

	go r.Run()
	inbound <- models.StateReportDto{DeviceID: "ghost"}
	close(inbound)
	<-outbound

	_, ok := meta.Get("ghost")
	assert.False(t, ok)
}
