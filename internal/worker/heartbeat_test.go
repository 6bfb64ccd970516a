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

func TestHeartbeatPublishesRegardlessOfActivity(t *testing.T) {
	descriptors := map[string]models.DeviceDescriptor{
		"a": {DeviceID: "a"}, "b": {DeviceID: "b"}, "c": {DeviceID: "c"},
	}
	meta := cache.NewMetaCache(map[string]*models.DeviceMeta{
		"a": models.NewDeviceMeta(descriptors["a"]),
		"b": models.NewDeviceMeta(descriptors["b"]),
		"c": models.NewDeviceMeta(descriptors["c"]),
	})
	outbound := make(chan models.OutboundMessage, 1)
	h := NewHeartbeat(5*time.Millisecond, meta, descriptors, outbound)

	go h.Run()
	defer h.Stop()

	select {
	case out := <-outbound:
		assert.Equal(t, models.OutboundServerState, out.Kind)
		assert.Len(t, out.ServerState.DeviceConfig, 3)
		assert.Len(t, out.ServerState.DeviceStatus, 3)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for heartbeat")
	}
}

func TestHeartbeatStopIsIdempotent(t *testing.T) {
	meta := cache.NewMetaCache(nil)
	outbound := make(chan models.OutboundMessage, 1)
	h := NewHeartbeat(5*time.Millisecond, meta, nil, outbound)

	go h.Run()
	h.Stop()
	h.Stop()
}

func TestHeartbeatSnapshotReflectsPriorReports(t *testing.T) {
	descriptors := map[string]models.DeviceDescriptor{"a": {DeviceID: "a"}}
	meta := cache.NewMetaCache(map[string]*models.DeviceMeta{"a": models.NewDeviceMeta(descriptors["a"])})
	meta.Apply("a", func(m *models.DeviceMeta) { m.Status = models.StatusActive })

	h := NewHeartbeat(time.Second, meta, descriptors, make(chan models.OutboundMessage, 1))
	snap := h.Snapshot()

	require.Contains(t, snap.ServerState.DeviceStatus, "a")
	assert.True(t, snap.ServerState.DeviceStatus["a"].Active)
}
