// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/internal/cache"
	"github.com/circutor/device-engine/internal/logger"
)

func TestStartSchedulerWithEmptyCronIsIdle(t *testing.T) {
	m := NewManager(logger.New("error"))
	require.NoError(t, m.StartScheduler("", cache.NewMetaCache(nil)))
	m.StopScheduler()
}

func TestStartSchedulerRegistersJob(t *testing.T) {
	m := NewManager(logger.New("error"))
	require.NoError(t, m.StartScheduler("@every 1h", cache.NewMetaCache(nil)))
	m.StopScheduler()
}

func TestStartSchedulerOnlyRunsOnce(t *testing.T) {
	m := NewManager(logger.New("error"))
	require.NoError(t, m.StartScheduler("@every 1h", cache.NewMetaCache(nil)))
	require.NoError(t, m.StartScheduler("bad spec that would error", cache.NewMetaCache(nil)))
	m.StopScheduler()
}
