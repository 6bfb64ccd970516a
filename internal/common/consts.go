// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
// Copyright (C) 2018-2019 IOTech Ltd
// Copyright (c) 2019 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package common

import "os"

const (
	APIv1Prefix = "/api/v1"

	ConfigDirectory = "./res"
	ConfigFileName  = "configuration.toml"

	APIDevicesRoute = APIv1Prefix + "/devices"
	APIPingRoute    = APIv1Prefix + "/ping"

	NameVar string = "name"

	// CorrelationHeader is the name reserved for a correlation ID. No code
	// in this module sets or reads it; dispatched commands are logged by
	// device_id only.
	CorrelationHeader = "X-Correlation-ID"

	// DummyModeEnvVar disables real port I/O in the Modbus and DMX bus
	// workers when set to DummyModeValue.
	DummyModeEnvVar = "mode"
	DummyModeValue  = "dummy"
)

// DummyModeEnabled reports whether the dummy-mode environment flag is
// set, the same check every bus package makes independently at
// construction time.
func DummyModeEnabled() bool {
	return os.Getenv(DummyModeEnvVar) == DummyModeValue
}
