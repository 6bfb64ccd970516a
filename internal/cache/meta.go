// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

// Package cache holds the single device-meta map shared by the state
// reporter, the heartbeat, and the diagnostic HTTP API (SPEC_FULL.md §5:
// "The device-meta map is behind a single mutex; it is updated only by the
// state reporter and read by the heartbeat").
package cache

import (
	"sync"

	"github.com/circutor/device-engine/pkg/models"
)

// MetaCache is the device-meta map. The zero value is not usable; build
// one with NewMetaCache from the factory's assembled meta map.
type MetaCache struct {
	mu   sync.RWMutex
	meta map[string]*models.DeviceMeta
}

// NewMetaCache builds a MetaCache seeded with the given initial entries,
// keyed by device_id — the map the topological factory produces during
// assembly (SPEC_FULL.md §4.1).
func NewMetaCache(initial map[string]*models.DeviceMeta) *MetaCache {
	meta := make(map[string]*models.DeviceMeta, len(initial))
	for id, m := range initial {
		meta[id] = m
	}
	return &MetaCache{meta: meta}
}

// Get returns a copy of the meta entry for deviceID, taken under the read
// lock, or the zero value if no such device was ever assembled. Callers
// never see the live pointer, so they can read the result without racing
// the state reporter's concurrent Apply (SPEC_FULL.md §5).
func (c *MetaCache) Get(deviceID string) (models.DeviceMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.meta[deviceID]
	if !ok {
		return models.DeviceMeta{}, false
	}
	return *m, true
}

// Apply mutates the meta entry for deviceID under the cache lock, used
// exclusively by the state reporter (worker.Reporter) to apply a
// StateReportDto. It is a no-op if deviceID is unknown.
func (c *MetaCache) Apply(deviceID string, mutate func(*models.DeviceMeta)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.meta[deviceID]; ok {
		mutate(m)
	}
}

// Snapshot returns a shallow copy of every meta entry, suitable for the
// heartbeat worker and the diagnostic HTTP API. Lock hold time is
// O(devices) and never overlaps any I/O, per SPEC_FULL.md §5.
func (c *MetaCache) Snapshot() map[string]models.DeviceMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.DeviceMeta, len(c.meta))
	for id, m := range c.meta {
		out[id] = *m
	}
	return out
}
