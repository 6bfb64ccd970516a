// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package modbus

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
)

type countingDi struct {
	mu    sync.Mutex
	count int
}

func (c *countingDi) Unit() byte      { return 1 }
func (c *countingDi) PortNum() uint16 { return 4 }
func (c *countingDi) Flavor() Flavor  { return FlavorCoil }
func (c *countingDi) NotifyFromBus(values []bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}
func (c *countingDi) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func TestDummyModeBusPollsRegisteredControllers(t *testing.T) {
	os.Setenv(common.DummyModeEnvVar, common.DummyModeValue)
	defer os.Unsetenv(common.DummyModeEnvVar)

	bus := New(Config{DeviceID: "modbus_bus_1", PollInterval: 5 * time.Millisecond, Log: logger.New("error")})
	di := &countingDi{}
	bus.RegisterDiController(di)

	require.NoError(t, bus.Start())
	defer bus.Stop()

	require.Eventually(t, func() bool { return di.Count() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestDummyModeBusWritesAreNoOps(t *testing.T) {
	os.Setenv(common.DummyModeEnvVar, common.DummyModeValue)
	defer os.Unsetenv(common.DummyModeEnvVar)

	bus := New(Config{DeviceID: "modbus_bus_1", PollInterval: 5 * time.Millisecond, Log: logger.New("error")})
	require.NoError(t, bus.Start())
	defer bus.Stop()

	// Must not panic or block even though no real handler/client was opened.
	bus.WriteSingleCoil(2, 0, true)
	time.Sleep(20 * time.Millisecond)
}

func TestBusStopIsIdempotent(t *testing.T) {
	os.Setenv(common.DummyModeEnvVar, common.DummyModeValue)
	defer os.Unsetenv(common.DummyModeEnvVar)

	bus := New(Config{DeviceID: "modbus_bus_1", PollInterval: 5 * time.Millisecond, Log: logger.New("error")})
	require.NoError(t, bus.Start())

	bus.Stop()
	bus.Stop()
}
