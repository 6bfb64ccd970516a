// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package common

// Config is the root of the service's TOML configuration file, loaded by
// internal/config.LoadConfig. Field names match the TOML table/key names
// exactly, following pelletier/go-toml's default (case-insensitive,
// struct-field-name-matches-key) decoding behavior.
type Config struct {
	Service   ServiceInfo
	Device    DeviceInfo
	Heartbeat HeartbeatInfo
	Modbus    ModbusInfo
	Dmx       DmxInfo
	Broker    EndpointInfo
	Catalogue EndpointInfo
	Scheduler SchedulerInfo
	Logging   LoggingInfo
}

// ServiceInfo configures the read-only diagnostic HTTP API.
type ServiceInfo struct {
	Host             string
	Port             int
	ConnectTimeoutMS int
}

// DeviceInfo names the local YAML device catalogue file consumed at
// startup.
type DeviceInfo struct {
	CatalogueFile string
}

// HeartbeatInfo configures the heartbeat worker.
type HeartbeatInfo struct {
	IntervalMS int
}

// ModbusInfo configures every modbus_bus master loop.
type ModbusInfo struct {
	PollIntervalMS int
}

// DmxInfo configures every dmx_bus transmitter loop.
type DmxInfo struct {
	FrameIntervalMS int
}

// EndpointInfo names a collaborator address probed by the connectivity
// pre-flight check; it is never dialed for real application traffic by
// this repository.
type EndpointInfo struct {
	Endpoint string
}

// SchedulerInfo configures the optional cron-driven diagnostic snapshot
// job. An empty DiagnosticSnapshotCron registers no job; the scheduler
// then runs idle.
type SchedulerInfo struct {
	DiagnosticSnapshotCron string
}

// LoggingInfo configures internal/logger.
type LoggingInfo struct {
	Level string
}

// Default returns the configuration the service runs with when no TOML
// file overrides a given field, used by tests and by LoadConfig as a
// starting point before unmarshalling.
func Default() *Config {
	return &Config{
		Service:   ServiceInfo{Host: "localhost", Port: 48080, ConnectTimeoutMS: 3000},
		Device:    DeviceInfo{CatalogueFile: "./res/devices.yaml"},
		Heartbeat: HeartbeatInfo{IntervalMS: 10000},
		Modbus:    ModbusInfo{PollIntervalMS: 100},
		Dmx:       DmxInfo{FrameIntervalMS: 10},
		Logging:   LoggingInfo{Level: "info"},
	}
}
